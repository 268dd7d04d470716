package kurbeln

import "gonum.org/v1/gonum/spatial/r2"

// Repair fills single-second dropouts: wherever two adjacent fixes are
// exactly 2 s apart a synthetic fix is inserted at the midpoint, linearly
// interpolated in every coordinate. The synthetic fix carries the Index
// of the fix before it. Longer gaps are left for the synchronizer to
// split on. The input slice is not modified.
func Repair(in []ProjectedSample) []ProjectedSample {
	if len(in) == 0 {
		return nil
	}
	out := make([]ProjectedSample, 0, len(in)+len(in)/16)
	out = append(out, in[0])
	for i := 1; i < len(in); i++ {
		prev, cur := in[i-1], in[i]
		if cur.Time-prev.Time == 2 {
			out = append(out, midpoint(prev, cur))
		}
		out = append(out, cur)
	}
	return out
}

func midpoint(a, b ProjectedSample) ProjectedSample {
	return ProjectedSample{
		IndexedSample: IndexedSample{
			Sample: Sample{
				Time: a.Time + 1,
				Lat:  (a.Lat + b.Lat) / 2,
				Lon:  (a.Lon + b.Lon) / 2,
				Alt:  (a.Alt + b.Alt) / 2,
			},
			Index: a.Index,
		},
		Pos:       r2.Scale(0.5, r2.Add(a.Pos, b.Pos)),
		Synthetic: true,
	}
}
