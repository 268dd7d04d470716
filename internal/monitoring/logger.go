// Package monitoring carries the operator-facing log sink and the
// counters printed at the end of a batch run.
package monitoring

import "log"

// Logf is the package-level operator logger. It defaults to log.Printf but
// may be replaced by SetLogger; tests usually mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}
