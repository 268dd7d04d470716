package kurbeln

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// testStart is an arbitrary epoch for synthetic tracks (a summer afternoon).
const testStart int64 = 1656417600

// pathFunc gives the planar position at second k.
type pathFunc func(k int) r2.Vec

// circle orbits centre with the given radius and period. Positive period
// turns counter-clockwise, negative clockwise.
func circle(centre r2.Vec, radius, period, phaseDeg float64) pathFunc {
	return func(k int) r2.Vec {
		th := phaseDeg*math.Pi/180 + 2*math.Pi*float64(k)/period
		return r2.Vec{X: centre.X + radius*math.Cos(th), Y: centre.Y + radius*math.Sin(th)}
	}
}

// line flies straight from origin with velocity v (m/s).
func line(origin, v r2.Vec) pathFunc {
	return func(k int) r2.Vec {
		return r2.Add(origin, r2.Scale(float64(k), v))
	}
}

// buildTrack samples path once per second for n seconds starting at
// start, placed around the default reference point.
func buildTrack(start int64, n int, alt float64, path pathFunc) Track {
	cfg := DefaultConfig()
	proj := NewProjector(cfg.RefLat, cfg.RefLon)
	t := make(Track, n)
	for k := 0; k < n; k++ {
		lat, lon := proj.Unproject(path(k))
		t[k] = Sample{Time: start + int64(k), Lat: lat, Lon: lon, Alt: alt}
	}
	return t
}

// dropSamples returns a copy of t without the fixes at the given positions.
func dropSamples(t Track, idx ...int) Track {
	skip := make(map[int]bool, len(idx))
	for _, i := range idx {
		skip[i] = true
	}
	out := make(Track, 0, len(t))
	for i, s := range t {
		if !skip[i] {
			out = append(out, s)
		}
	}
	return out
}

// projected is a shorthand for a ProjectedSample at time tm and position (x, y).
func projected(tm int64, index int, x, y float64) ProjectedSample {
	return ProjectedSample{
		IndexedSample: IndexedSample{Sample: Sample{Time: tm}, Index: index},
		Pos:           r2.Vec{X: x, Y: y},
	}
}

// timedSamples builds projected samples at the given times with
// positions on the x axis.
func timedSamples(times ...int64) []ProjectedSample {
	out := make([]ProjectedSample, len(times))
	for i, tm := range times {
		out[i] = projected(tm, i, float64(i), 0)
	}
	return out
}
