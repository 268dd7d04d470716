package kurbeln

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Classify fills in the geometry of every pair of a Segment and marks the
// pairs that are close enough, horizontally and vertically, to be Near.
//
// BearingDivergence is the angle between the two pilots' headings towards
// their next fix: 0 when flying the same way, 180 when flying opposite
// ways. Two pilots on opposite sides of a thermal core fly close to
// opposite headings. The last pair of a Segment has no successor; it gets
// 180 and so always counts towards the opposing quota.
func Classify(seg Segment, cfg Config) []AlignedPair {
	out := make([]AlignedPair, len(seg))
	for k, p := range seg {
		p.Distance = r2.Norm(r2.Sub(p.A.Pos, p.B.Pos))
		p.AltDistance = p.A.Alt - p.B.Alt
		p.BearingDivergence = 180
		if k+1 < len(seg) {
			next := seg[k+1]
			p.BearingDivergence = divergence(
				bearing(p.A.Pos, next.A.Pos),
				bearing(p.B.Pos, next.B.Pos),
			)
		}
		p.Near = math.Abs(p.AltDistance) <= cfg.AltTolerance && p.Distance <= cfg.MaxDistance
		out[k] = p
	}
	return out
}

// bearing is the direction of travel from u to v in degrees,
// counter-clockwise from east, in (-180, 180].
func bearing(u, v r2.Vec) float64 {
	d := r2.Sub(v, u)
	return math.Atan2(d.Y, d.X) * 180 / math.Pi
}

// divergence is the unsigned angle between two headings, in [0, 180].
func divergence(b1, b2 float64) float64 {
	d := math.Abs(b1 - b2)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// SplitRuns groups consecutive Near pairs into Runs. A non-Near pair always
// ends a run. Runs shorter than cfg.MinRunLength can never hold a thermal
// window and are dropped.
func SplitRuns(pairs []AlignedPair, cfg Config) []Run {
	var runs []Run
	lastEnd := -1
	start := -1

	flush := func(end int) {
		if start < 0 {
			return
		}
		n := end - start
		if n < cfg.MinRunLength {
			diagf("discarding near run of %ds at t=%d (min %ds)", n, pairs[start].Time(), cfg.MinRunLength)
		} else {
			if lastEnd >= 0 {
				reportGap(pairs[lastEnd:start], cfg)
			}
			runs = append(runs, Run(pairs[start:end:end]))
			lastEnd = end
		}
		start = -1
	}

	for k, p := range pairs {
		if p.Near {
			if start < 0 {
				start = k
			}
			continue
		}
		flush(k)
	}
	flush(len(pairs))
	return runs
}

// reportGap logs short interruptions between two kept runs. They usually
// mean one pilot briefly drifted out of range within the same climb.
func reportGap(gap []AlignedPair, cfg Config) {
	if len(gap) == 0 || len(gap) >= cfg.GapReportLength {
		return
	}
	for _, p := range gap {
		diagf("gap t=%d dist=%.0fm alt=%.0fm bearing=%.0f near=%v",
			p.Time(), p.Distance, p.AltDistance, p.BearingDivergence, p.Near)
	}
}
