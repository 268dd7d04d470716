// Package report renders a compared pair for people: summary numbers,
// an interactive HTML page and a static distance plot.
package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

// ErrNoWindow is returned when a view has no shared thermal to show.
var ErrNoWindow = errors.New("pair has no matched window")

// PairView is one analysed pair as shown in reports.
type PairView struct {
	Flight1, Flight2 string
	Pilot1, Pilot2   string
	Analysis         kurbeln.Analysis
}

func (v PairView) label1() string { return label(v.Pilot1, v.Flight1) }
func (v PairView) label2() string { return label(v.Pilot2, v.Flight2) }

func label(pilot, id string) string {
	if pilot == "" {
		return id
	}
	return fmt.Sprintf("%s (%s)", pilot, id)
}

// PrettyDuration formats seconds the way the results table shows them:
// "45s", "12 min", "1 h 5 min".
func PrettyDuration(s int) string {
	switch {
	case s < 60:
		return fmt.Sprintf("%ds", s)
	case s < 3600:
		return fmt.Sprintf("%d min", s/60)
	}
	return fmt.Sprintf("%d h %d min", s/3600, s%3600/60)
}

// Stats summarises a matched window.
type Stats struct {
	Samples          int
	MeanDistance     float64
	StdDistance      float64
	MinDistance      float64
	MaxDistance      float64
	MeanAltDistance  float64
	OpposingFraction float64
}

// WindowStats computes Stats over window. Pairs whose headings diverge by
// more than cfg.BearingThreshold count as opposing.
func WindowStats(window []kurbeln.AlignedPair, cfg kurbeln.Config) (Stats, error) {
	if len(window) == 0 {
		return Stats{}, ErrNoWindow
	}

	dist := make([]float64, len(window))
	alt := make([]float64, len(window))
	opposing := 0
	for i, p := range window {
		dist[i] = p.Distance
		alt[i] = p.AltDistance
		if p.BearingDivergence > cfg.BearingThreshold {
			opposing++
		}
	}

	mean, std := stat.MeanStdDev(dist, nil)
	if len(dist) == 1 {
		std = 0
	}
	return Stats{
		Samples:          len(window),
		MeanDistance:     mean,
		StdDistance:      std,
		MinDistance:      floats.Min(dist),
		MaxDistance:      floats.Max(dist),
		MeanAltDistance:  stat.Mean(alt, nil),
		OpposingFraction: float64(opposing) / float64(len(window)),
	}, nil
}
