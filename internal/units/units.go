// Package units provides shared constants and validation for the length
// units and time zones used when presenting results.
package units

import "fmt"

// Unit constants
const (
	Metres = "m"
	Feet   = "ft"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{Metres, Feet}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "m, ft"
}

// ConvertLength converts a length from metres to the target units.
// All distances and altitudes are computed in metres.
func ConvertLength(metres float64, targetUnits string) float64 {
	switch targetUnits {
	case Feet:
		return metres / 0.3048
	default:
		return metres
	}
}

// FormatLength renders metres in the target units, rounded to whole units.
func FormatLength(metres float64, targetUnits string) string {
	if !IsValid(targetUnits) {
		targetUnits = Metres
	}
	return fmt.Sprintf("%.0f %s", ConvertLength(metres, targetUnits), targetUnits)
}
