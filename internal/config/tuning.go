package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the co-circling
// detector and the pair runner. Every field is optional; the Get* methods
// supply the built-in default for anything left out of the JSON.
type TuningConfig struct {
	// Projection reference point (degrees)
	ReferenceLat *float64 `json:"reference_lat,omitempty"`
	ReferenceLon *float64 `json:"reference_lon,omitempty"`

	// Proximity classifier
	MaxDistanceM  *float64 `json:"max_distance_m,omitempty"`
	AltToleranceM *float64 `json:"alt_tolerance_m,omitempty"`

	// Thermal window search
	ConstDistanceToleranceM *float64 `json:"const_distance_tolerance_m,omitempty"`
	MinSeconds              *int     `json:"min_seconds,omitempty"`
	BearingThresholdDeg     *float64 `json:"bearing_threshold_deg,omitempty"`
	OpposingQuota           *float64 `json:"opposing_quota,omitempty"`

	// Track validation and run grouping
	MaxIrregularFraction *float64 `json:"max_irregular_fraction,omitempty"`
	MinRunLength         *int     `json:"min_run_length,omitempty"`
	GapReportLength      *int     `json:"gap_report_length,omitempty"`

	// Pair runner (optional)
	Workers        *int `json:"workers,omitempty"`
	MaxPairsPerDay *int `json:"max_pairs_per_day,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults. Useful for writing out a starter file.
// MinRunLength stays unset so that it keeps following MinSeconds.
func DefaultTuningConfig() *TuningConfig {
	d := EmptyTuningConfig()
	return &TuningConfig{
		ReferenceLat:            ptrFloat64(d.GetReferenceLat()),
		ReferenceLon:            ptrFloat64(d.GetReferenceLon()),
		MaxDistanceM:            ptrFloat64(d.GetMaxDistanceM()),
		AltToleranceM:           ptrFloat64(d.GetAltToleranceM()),
		ConstDistanceToleranceM: ptrFloat64(d.GetConstDistanceToleranceM()),
		MinSeconds:              ptrInt(d.GetMinSeconds()),
		BearingThresholdDeg:     ptrFloat64(d.GetBearingThresholdDeg()),
		OpposingQuota:           ptrFloat64(d.GetOpposingQuota()),
		MaxIrregularFraction:    ptrFloat64(d.GetMaxIrregularFraction()),
		GapReportLength:         ptrInt(d.GetGapReportLength()),
		Workers:                 ptrInt(d.GetWorkers()),
		MaxPairsPerDay:          ptrInt(d.GetMaxPairsPerDay()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from cmd/kurbeln/ and deeper packages
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.ReferenceLat != nil && (*c.ReferenceLat < -90 || *c.ReferenceLat > 90) {
		return fmt.Errorf("reference_lat must be between -90 and 90, got %f", *c.ReferenceLat)
	}
	if c.ReferenceLon != nil && (*c.ReferenceLon < -180 || *c.ReferenceLon > 180) {
		return fmt.Errorf("reference_lon must be between -180 and 180, got %f", *c.ReferenceLon)
	}

	for name, v := range map[string]*float64{
		"max_distance_m":             c.MaxDistanceM,
		"alt_tolerance_m":            c.AltToleranceM,
		"const_distance_tolerance_m": c.ConstDistanceToleranceM,
	} {
		if v != nil && *v < 0 {
			return fmt.Errorf("%s must be non-negative, got %f", name, *v)
		}
	}

	if c.BearingThresholdDeg != nil && (*c.BearingThresholdDeg < 0 || *c.BearingThresholdDeg > 180) {
		return fmt.Errorf("bearing_threshold_deg must be between 0 and 180, got %f", *c.BearingThresholdDeg)
	}
	if c.OpposingQuota != nil && (*c.OpposingQuota < 0 || *c.OpposingQuota > 1) {
		return fmt.Errorf("opposing_quota must be between 0 and 1, got %f", *c.OpposingQuota)
	}
	if c.MaxIrregularFraction != nil && (*c.MaxIrregularFraction <= 0 || *c.MaxIrregularFraction > 1) {
		return fmt.Errorf("max_irregular_fraction must be in (0, 1], got %f", *c.MaxIrregularFraction)
	}

	if c.MinSeconds != nil && *c.MinSeconds < 1 {
		return fmt.Errorf("min_seconds must be positive, got %d", *c.MinSeconds)
	}
	if c.MinRunLength != nil && *c.MinRunLength < 0 {
		return fmt.Errorf("min_run_length must be non-negative, got %d", *c.MinRunLength)
	}
	if c.GapReportLength != nil && *c.GapReportLength < 0 {
		return fmt.Errorf("gap_report_length must be non-negative, got %d", *c.GapReportLength)
	}
	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}
	if c.MaxPairsPerDay != nil && *c.MaxPairsPerDay < 0 {
		return fmt.Errorf("max_pairs_per_day must be non-negative, got %d", *c.MaxPairsPerDay)
	}

	return nil
}

// GetReferenceLat returns the reference_lat value or the default (Schauinsland launch).
func (c *TuningConfig) GetReferenceLat() float64 {
	if c.ReferenceLat == nil {
		return 47.9133
	}
	return *c.ReferenceLat
}

// GetReferenceLon returns the reference_lon value or the default (Schauinsland launch).
func (c *TuningConfig) GetReferenceLon() float64 {
	if c.ReferenceLon == nil {
		return 7.8983
	}
	return *c.ReferenceLon
}

// GetMaxDistanceM returns the max_distance_m value or the default.
func (c *TuningConfig) GetMaxDistanceM() float64 {
	if c.MaxDistanceM == nil {
		return 250
	}
	return *c.MaxDistanceM
}

// GetAltToleranceM returns the alt_tolerance_m value or the default.
func (c *TuningConfig) GetAltToleranceM() float64 {
	if c.AltToleranceM == nil {
		return 50
	}
	return *c.AltToleranceM
}

// GetConstDistanceToleranceM returns the const_distance_tolerance_m value or the default.
func (c *TuningConfig) GetConstDistanceToleranceM() float64 {
	if c.ConstDistanceToleranceM == nil {
		return 50
	}
	return *c.ConstDistanceToleranceM
}

// GetMinSeconds returns the min_seconds value or the default.
func (c *TuningConfig) GetMinSeconds() int {
	if c.MinSeconds == nil {
		return 60
	}
	return *c.MinSeconds
}

// GetBearingThresholdDeg returns the bearing_threshold_deg value or the default.
func (c *TuningConfig) GetBearingThresholdDeg() float64 {
	if c.BearingThresholdDeg == nil {
		return 90
	}
	return *c.BearingThresholdDeg
}

// GetOpposingQuota returns the opposing_quota value or the default.
func (c *TuningConfig) GetOpposingQuota() float64 {
	if c.OpposingQuota == nil {
		return 0.25
	}
	return *c.OpposingQuota
}

// GetMaxIrregularFraction returns the max_irregular_fraction value or the default.
func (c *TuningConfig) GetMaxIrregularFraction() float64 {
	if c.MaxIrregularFraction == nil {
		return 0.05
	}
	return *c.MaxIrregularFraction
}

// GetMinRunLength returns the min_run_length value or the default.
// Left unset, it follows min_seconds: a shorter run can never hold a window.
func (c *TuningConfig) GetMinRunLength() int {
	if c.MinRunLength == nil {
		return c.GetMinSeconds()
	}
	return *c.MinRunLength
}

// GetGapReportLength returns the gap_report_length value or the default.
func (c *TuningConfig) GetGapReportLength() int {
	if c.GapReportLength == nil {
		return 30
	}
	return *c.GapReportLength
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 4
	}
	return *c.Workers
}

// GetMaxPairsPerDay returns the max_pairs_per_day value or the default.
// Zero means unlimited.
func (c *TuningConfig) GetMaxPairsPerDay() int {
	if c.MaxPairsPerDay == nil {
		return 0
	}
	return *c.MaxPairsPerDay
}
