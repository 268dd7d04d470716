package kurbeln

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// EarthRadius is the mean Earth radius in metres.
const EarthRadius = 6371000.0

// Projector maps geodetic coordinates onto a local east/north plane
// centred on a reference point (equirectangular approximation). Good to
// well under 1% within a few tens of kilometres of the reference.
type Projector struct {
	refLat, refLon float64 // radians
	cosRef         float64
}

// NewProjector returns a Projector for the reference point (degrees).
func NewProjector(refLat, refLon float64) Projector {
	lat := refLat * math.Pi / 180
	return Projector{
		refLat: lat,
		refLon: refLon * math.Pi / 180,
		cosRef: math.Cos(lat),
	}
}

// Project returns the planar position of (lat, lon) in metres.
func (p Projector) Project(lat, lon float64) r2.Vec {
	return r2.Vec{
		X: (lon*math.Pi/180 - p.refLon) * EarthRadius * p.cosRef,
		Y: (lat*math.Pi/180 - p.refLat) * EarthRadius,
	}
}

// Unproject is the inverse of Project.
func (p Projector) Unproject(v r2.Vec) (lat, lon float64) {
	lat = (v.Y/EarthRadius + p.refLat) * 180 / math.Pi
	lon = (v.X/(EarthRadius*p.cosRef) + p.refLon) * 180 / math.Pi
	return lat, lon
}

// ProjectTrack indexes and projects every fix of t. The result is a new
// slice; t is left untouched.
func (p Projector) ProjectTrack(t Track) []ProjectedSample {
	out := make([]ProjectedSample, len(t))
	for i, s := range t {
		out[i] = ProjectedSample{
			IndexedSample: IndexedSample{Sample: s, Index: i},
			Pos:           p.Project(s.Lat, s.Lon),
		}
	}
	return out
}
