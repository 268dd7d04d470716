package monitoring

import (
	"fmt"
	"sync/atomic"
	"time"
)

// RunStats counts what happened to the pairs of one batch run. All
// methods are safe for concurrent use by the pair workers.
type RunStats struct {
	started time.Time

	planned  atomic.Int64
	fresh    atomic.Int64
	computed atomic.Int64
	matches  atomic.Int64
	invalid  atomic.Int64
	failed   atomic.Int64
	capped   atomic.Int64
}

// NewRunStats starts the clock for a run.
func NewRunStats(now time.Time) *RunStats {
	return &RunStats{started: now}
}

func (s *RunStats) Planned(n int) { s.planned.Add(int64(n)) }
func (s *RunStats) Fresh(n int)   { s.fresh.Add(int64(n)) }
func (s *RunStats) Computed()     { s.computed.Add(1) }
func (s *RunStats) Match()        { s.matches.Add(1) }
func (s *RunStats) Invalid()      { s.invalid.Add(1) }
func (s *RunStats) Failed()       { s.failed.Add(1) }
func (s *RunStats) Capped(n int)  { s.capped.Add(int64(n)) }

// Snapshot is a point-in-time copy of RunStats.
type Snapshot struct {
	Planned, Fresh, Computed, Matches, Invalid, Failed, Capped int64
	Elapsed                                                    time.Duration
}

// Snapshot returns the current counts.
func (s *RunStats) Snapshot(now time.Time) Snapshot {
	return Snapshot{
		Planned:  s.planned.Load(),
		Fresh:    s.fresh.Load(),
		Computed: s.computed.Load(),
		Matches:  s.matches.Load(),
		Invalid:  s.invalid.Load(),
		Failed:   s.failed.Load(),
		Capped:   s.capped.Load(),
		Elapsed:  now.Sub(s.started),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf("planned=%d fresh=%d computed=%d matches=%d invalid=%d failed=%d capped=%d elapsed=%s",
		s.Planned, s.Fresh, s.Computed, s.Matches, s.Invalid, s.Failed, s.Capped, s.Elapsed.Round(time.Millisecond))
}

// Log writes the current counts through Logf.
func (s *RunStats) Log(prefix string, now time.Time) {
	Logf("%s %s", prefix, s.Snapshot(now))
}
