package kurbeln

import "fmt"

// ThermalMatch describes the longest stretch two pilots spent circling
// together. Index ranges are half-open and refer to each pilot's
// validated track; Lat/Lon give each pilot's position at the end of the
// stretch.
type ThermalMatch struct {
	IndexStart1 int     `json:"index_start1"`
	IndexEnd1   int     `json:"index_end1"`
	IndexStart2 int     `json:"index_start2"`
	IndexEnd2   int     `json:"index_end2"`
	Duration    int     `json:"duration"` // seconds
	Lat1        float64 `json:"lat1"`
	Lon1        float64 `json:"lon1"`
	Lat2        float64 `json:"lat2"`
	Lon2        float64 `json:"lon2"`
}

// Flip returns the match as seen from the second pilot.
func (m ThermalMatch) Flip() ThermalMatch {
	return ThermalMatch{
		IndexStart1: m.IndexStart2,
		IndexEnd1:   m.IndexEnd2,
		IndexStart2: m.IndexStart1,
		IndexEnd2:   m.IndexEnd1,
		Duration:    m.Duration,
		Lat1:        m.Lat2,
		Lon1:        m.Lon2,
		Lat2:        m.Lat1,
		Lon2:        m.Lon1,
	}
}

func newMatch(w []AlignedPair) ThermalMatch {
	first, last := w[0], w[len(w)-1]
	return ThermalMatch{
		IndexStart1: first.A.Index,
		IndexEnd1:   last.A.Index + 1,
		IndexStart2: first.B.Index,
		IndexEnd2:   last.B.Index + 1,
		Duration:    len(w),
		Lat1:        last.A.Lat,
		Lon1:        last.A.Lon,
		Lat2:        last.B.Lat,
		Lon2:        last.B.Lon,
	}
}

// Outcome classifies the result of comparing two tracks.
type Outcome int

const (
	OutcomeMatch Outcome = iota + 1
	OutcomeTrack1Invalid
	OutcomeTrack2Invalid
	OutcomeBothInvalid
	OutcomeNoOverlap
	OutcomeNoQualifyingWindow
)

var outcomeNames = map[Outcome]string{
	OutcomeMatch:              "match",
	OutcomeTrack1Invalid:      "track1_invalid",
	OutcomeTrack2Invalid:      "track2_invalid",
	OutcomeBothInvalid:        "both_invalid",
	OutcomeNoOverlap:          "no_overlap",
	OutcomeNoQualifyingWindow: "no_window",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// ParseOutcome is the inverse of Outcome.String.
func ParseOutcome(s string) (Outcome, error) {
	for o, name := range outcomeNames {
		if name == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown outcome %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (o Outcome) MarshalText() ([]byte, error) {
	if _, ok := outcomeNames[o]; !ok {
		return nil, fmt.Errorf("unknown outcome %d", int(o))
	}
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(b []byte) error {
	v, err := ParseOutcome(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Flip swaps the two track-specific outcomes.
func (o Outcome) Flip() Outcome {
	switch o {
	case OutcomeTrack1Invalid:
		return OutcomeTrack2Invalid
	case OutcomeTrack2Invalid:
		return OutcomeTrack1Invalid
	}
	return o
}

// Result is the outcome of one pairwise comparison. Match is set only
// for OutcomeMatch. Segments and Runs count the aligned stretches and the
// near runs that were searched.
type Result struct {
	Outcome  Outcome       `json:"outcome"`
	Match    *ThermalMatch `json:"match"`
	Segments int           `json:"segments"`
	Runs     int           `json:"runs"`
}

// Found reports whether the comparison produced a match.
func (r Result) Found() bool { return r.Outcome == OutcomeMatch && r.Match != nil }

// Flip returns the result as if the tracks had been passed the other way round.
func (r Result) Flip() Result {
	out := r
	out.Outcome = r.Outcome.Flip()
	if r.Match != nil {
		m := r.Match.Flip()
		out.Match = &m
	}
	return out
}
