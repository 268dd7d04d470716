package kurbeln

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Sample is one GPS fix as delivered by the track parser.
type Sample struct {
	Time int64   // seconds, on a clock shared by both compared tracks
	Lat  float64 // degrees
	Lon  float64 // degrees
	Alt  float64 // metres
}

func (s Sample) String() string {
	return fmt.Sprintf("[%d] %.6f,%.6f %.0fm", s.Time, s.Lat, s.Lon, s.Alt)
}

// Track is a slice of Samples, ordered by non-decreasing Time.
type Track []Sample

// Start returns the time of the first fix. The track must not be empty.
func (t Track) Start() int64 { return t[0].Time }

// End returns the time of the last fix. The track must not be empty.
func (t Track) End() int64 { return t[len(t)-1].Time }

func (t Track) String() string {
	if len(t) == 0 {
		return "Track: 0 points"
	}
	return fmt.Sprintf("Track: %d points, %d..%d (%ds)", len(t), t.Start(), t.End(), t.End()-t.Start())
}

// IndexedSample remembers where a fix sits in its validated track, so
// results can be mapped back onto the source log.
type IndexedSample struct {
	Sample
	Index int
}

// ProjectedSample is an IndexedSample placed on the local plane.
type ProjectedSample struct {
	IndexedSample
	Pos       r2.Vec // metres east (X) and north (Y) of the reference point
	Synthetic bool   // inserted by Repair, not present in the log
}

// AlignedPair is one timestamp-matched pair of fixes from two tracks.
type AlignedPair struct {
	A, B ProjectedSample

	Distance          float64 // planar metres
	AltDistance       float64 // A.Alt - B.Alt, metres
	BearingDivergence float64 // angle between the two headings, [0,180] degrees
	Near              bool
}

// Time returns the shared timestamp of the pair.
func (p AlignedPair) Time() int64 { return p.A.Time }

// Segment is a stretch where both tracks advance in 1 second lockstep.
type Segment []AlignedPair

// Run is a stretch of a Segment where every pair is Near.
type Run []AlignedPair
