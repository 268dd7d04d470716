package kurbeln

import (
	"errors"
	"fmt"
)

var (
	// ErrSameTrack is returned when a track is compared with itself.
	ErrSameTrack = errors.New("cannot compare a track with itself")
	// ErrTooFewSamples is returned for tracks without a single pair of fixes.
	ErrTooFewSamples = errors.New("track has fewer than two samples")
)

// Analysis is a Result together with the intermediate data that produced
// it, for reports and debugging.
type Analysis struct {
	Result
	NearRuns []Run         // near runs that were searched
	Window   []AlignedPair // the matched pairs, nil without a match
}

// Comparator runs the full pipeline for pairs of tracks. It holds no
// mutable state and may be used from several goroutines.
type Comparator struct {
	cfg  Config
	proj Projector
}

// NewComparator returns a Comparator for cfg.
func NewComparator(cfg Config) *Comparator {
	return &Comparator{cfg: cfg, proj: NewProjector(cfg.RefLat, cfg.RefLon)}
}

// Config returns the thresholds the Comparator was built with.
func (c *Comparator) Config() Config { return c.cfg }

// Projector returns the projection used for both tracks.
func (c *Comparator) Projector() Projector { return c.proj }

// Compare looks for the longest stretch where t1 and t2 circled together.
// Errors are reserved for misuse; every data-dependent negative answer is
// an Outcome. Compare(t2, t1) always equals Compare(t1, t2).Flip().
func (c *Comparator) Compare(t1, t2 Track) (Result, error) {
	a, err := c.Analyze(t1, t2)
	if err != nil {
		return Result{}, err
	}
	return a.Result, nil
}

// Analyze is Compare, keeping the runs and the matched window.
func (c *Comparator) Analyze(t1, t2 Track) (Analysis, error) {
	if sameTrack(t1, t2) {
		opsf("refusing to compare %v with itself", t1)
		return Analysis{}, ErrSameTrack
	}
	if len(t1) < 2 {
		return Analysis{}, fmt.Errorf("track1: %w", ErrTooFewSamples)
	}
	if len(t2) < 2 {
		return Analysis{}, fmt.Errorf("track2: %w", ErrTooFewSamples)
	}

	ok1 := IsContiguous(t1, c.cfg.MaxIrregularFraction)
	ok2 := IsContiguous(t2, c.cfg.MaxIrregularFraction)
	switch {
	case !ok1 && !ok2:
		diagf("both tracks irregular (%.3f, %.3f)", IrregularFraction(t1), IrregularFraction(t2))
		return result(OutcomeBothInvalid), nil
	case !ok1:
		diagf("track1 irregular (%.3f)", IrregularFraction(t1))
		return result(OutcomeTrack1Invalid), nil
	case !ok2:
		diagf("track2 irregular (%.3f)", IrregularFraction(t2))
		return result(OutcomeTrack2Invalid), nil
	}

	if t1.End() < t2.Start() || t2.End() < t1.Start() {
		return result(OutcomeNoOverlap), nil
	}

	p1 := Repair(c.proj.ProjectTrack(t1))
	p2 := Repair(c.proj.ProjectTrack(t2))
	segs := Synchronize(p1, p2)
	if len(segs) == 0 {
		return result(OutcomeNoOverlap), nil
	}

	var runs []Run
	for _, seg := range segs {
		runs = append(runs, SplitRuns(Classify(seg, c.cfg), c.cfg)...)
	}

	out := Analysis{
		Result:   Result{Segments: len(segs), Runs: len(runs)},
		NearRuns: runs,
	}
	r, w, ok := BestWindow(runs, c.cfg)
	if !ok {
		out.Outcome = OutcomeNoQualifyingWindow
		return out, nil
	}

	out.Window = runs[r][w.Start:w.End:w.End]
	m := newMatch(out.Window)
	out.Outcome = OutcomeMatch
	out.Match = &m
	diagf("match: %ds, track1 [%d,%d) track2 [%d,%d)", m.Duration, m.IndexStart1, m.IndexEnd1, m.IndexStart2, m.IndexEnd2)
	return out, nil
}

func result(o Outcome) Analysis {
	return Analysis{Result: Result{Outcome: o}}
}

// sameTrack reports whether both tracks share a backing array.
func sameTrack(t1, t2 Track) bool {
	return len(t1) > 0 && len(t2) > 0 && len(t1) == len(t2) && &t1[0] == &t2[0]
}

// Kurbeln compares two tracks with a one-off Comparator.
func Kurbeln(t1, t2 Track, cfg Config) (Result, error) {
	return NewComparator(cfg).Compare(t1, t2)
}
