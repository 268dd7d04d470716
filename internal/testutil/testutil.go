// Package testutil provides shared test fixtures: synthetic flight logs
// for the packages that read IGC files from disk.
package testutil

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

// Fix is one logged position. Alt is used for both barometric and GPS
// altitude.
type Fix struct {
	Lat, Lon, Alt float64
}

// Circle returns n one-second fixes orbiting (lat, lon) at radius metres
// with the given period in seconds. phaseDeg sets the starting angle, so
// two circles 180 degrees apart put the pilots on opposite sides of the
// same core.
func Circle(lat, lon, radius, period, phaseDeg, alt float64, n int) []Fix {
	mPerDegLat := kurbeln.EarthRadius * math.Pi / 180
	mPerDegLon := mPerDegLat * math.Cos(lat*math.Pi/180)
	out := make([]Fix, n)
	for i := range out {
		a := phaseDeg*math.Pi/180 + 2*math.Pi*float64(i)/period
		out[i] = Fix{
			Lat: lat + radius*math.Sin(a)/mPerDegLat,
			Lon: lon + radius*math.Cos(a)/mPerDegLon,
			Alt: alt,
		}
	}
	return out
}

// Drop removes the fixes whose index satisfies skip, leaving gaps in
// the logged seconds.
func Drop(fixes []Fix, skip func(i int) bool) map[int]Fix {
	out := make(map[int]Fix, len(fixes))
	for i, f := range fixes {
		if !skip(i) {
			out[i] = f
		}
	}
	return out
}

// coord formats degrees as DDMMmmm (DDDMMmmm with degDigits 3).
func coord(v float64, degDigits int, pos, neg string) string {
	hemi := pos
	if v < 0 {
		hemi, v = neg, -v
	}
	milli := int(math.Round(v * 60000))
	return fmt.Sprintf("%0*d%05d%s", degDigits, milli/60000, milli%60000, hemi)
}

// IGC renders fixes as an IGC log with one B record per second from
// start. Fixes keyed by second offset allow gaps; see Drop.
func IGC(start time.Time, fixes map[int]Fix, n int) string {
	start = start.UTC()
	var b strings.Builder
	fmt.Fprintf(&b, "AXXX001\r\nHFDTE%s\r\nHFPLTPILOTINCHARGE: Test\r\n", start.Format("020106"))
	for i := 0; i < n; i++ {
		f, ok := fixes[i]
		if !ok {
			continue
		}
		ts := start.Add(time.Duration(i) * time.Second)
		fmt.Fprintf(&b, "B%s%s%sA%05d%05d\r\n", ts.Format("150405"),
			coord(f.Lat, 2, "N", "S"), coord(f.Lon, 3, "E", "W"), int(f.Alt), int(f.Alt))
	}
	return b.String()
}

// Gzip compresses an IGC log the way the track archive stores it.
func Gzip(t testing.TB, log string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write([]byte(log)); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip: %v", err)
	}
	return buf.Bytes()
}

// TrackLog is the gzipped IGC log of contiguous fixes starting at start.
func TrackLog(t testing.TB, start time.Time, fixes []Fix) []byte {
	t.Helper()
	return Gzip(t, IGC(start, Drop(fixes, func(int) bool { return false }), len(fixes)))
}
