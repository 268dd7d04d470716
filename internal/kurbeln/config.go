package kurbeln

import "github.com/banshee-data/kurbeln/internal/config"

// Config holds every threshold used by the comparison pipeline. A zero
// Config is not useful; start from DefaultConfig or ConfigFromTuning.
type Config struct {
	RefLat, RefLon float64 // projection reference, degrees

	MaxDistance  float64 // metres between pilots for a pair to be Near
	AltTolerance float64 // metres of altitude difference for a pair to be Near

	ConstDistanceTolerance float64 // allowed max-min distance spread within a window
	MinSeconds             int     // minimum window length
	BearingThreshold       float64 // degrees of heading divergence for a pair to count as opposing
	OpposingQuota          float64 // minimum share of opposing pairs in a window

	MaxIrregularFraction float64 // contiguity limit for the validator
	MinRunLength         int     // runs shorter than this are dropped before the search
	GapReportLength      int     // non-near gaps shorter than this are logged
}

// ConfigFromTuning resolves a TuningConfig into a Config, applying the
// built-in default for every unset field.
func ConfigFromTuning(t *config.TuningConfig) Config {
	if t == nil {
		t = config.EmptyTuningConfig()
	}
	return Config{
		RefLat:                 t.GetReferenceLat(),
		RefLon:                 t.GetReferenceLon(),
		MaxDistance:            t.GetMaxDistanceM(),
		AltTolerance:           t.GetAltToleranceM(),
		ConstDistanceTolerance: t.GetConstDistanceToleranceM(),
		MinSeconds:             t.GetMinSeconds(),
		BearingThreshold:       t.GetBearingThresholdDeg(),
		OpposingQuota:          t.GetOpposingQuota(),
		MaxIrregularFraction:   t.GetMaxIrregularFraction(),
		MinRunLength:           t.GetMinRunLength(),
		GapReportLength:        t.GetGapReportLength(),
	}
}

// DefaultConfig returns the Config used for the contest statistics.
func DefaultConfig() Config {
	return ConfigFromTuning(nil)
}
