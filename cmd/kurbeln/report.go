package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/igc"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/report"
	"github.com/banshee-data/kurbeln/internal/security"
	"github.com/banshee-data/kurbeln/internal/units"
)

func handleReport(args []string, stdout, stderr io.Writer) error {
	fset := newFlagSet("report", stderr)
	trackDir := fset.String("tracks", "_flights", "Directory of <id>.igc.gz track logs")
	flightsPath := fset.String("flights", "", "Contest flight catalogue, for pilot names")
	configPath := fset.String("config", "", "Tuning config JSON")
	outDir := fset.String("out", "_out", "Output directory")
	withPNG := fset.Bool("png", true, "Also write a PNG distance plot")
	unit := fset.String("units", units.Metres, "Length units for the summary ("+units.GetValidUnitsString()+")")
	tz := fset.String("tz", "UTC", "Time zone for the summary")
	fset.Usage = func() {
		fmt.Fprintln(stderr, "Usage: kurbeln report [options] <flight-id> <flight-id>")
		fset.PrintDefaults()
	}
	if err := parseFlags(fset, args); err != nil {
		return err
	}
	if fset.NArg() != 2 {
		fset.Usage()
		return errUsage
	}
	id1, id2 := fset.Arg(0), fset.Arg(1)
	if !units.IsValid(*unit) {
		return fmt.Errorf("invalid units %q, expected one of: %s", *unit, units.GetValidUnitsString())
	}
	if !units.IsTimezoneValid(*tz) {
		return fmt.Errorf("invalid time zone %q", *tz)
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	cfg := kurbeln.ConfigFromTuning(tuning)

	view := report.PairView{Flight1: id1, Flight2: id2}
	if *flightsPath != "" {
		cat, err := flights.Load(fsutil.OSFileSystem{}, *flightsPath)
		if err != nil {
			return err
		}
		if f, ok := cat.ByID(id1); ok {
			view.Pilot1 = f.Pilot()
		}
		if f, ok := cat.ByID(id2); ok {
			view.Pilot2 = f.Pilot()
		}
	}

	t1, err := loadTrack(*trackDir, id1)
	if err != nil {
		return err
	}
	t2, err := loadTrack(*trackDir, id2)
	if err != nil {
		return err
	}
	view.Analysis, err = kurbeln.NewComparator(cfg).Analyze(t1, t2)
	if err != nil {
		return err
	}
	if !view.Analysis.Found() {
		return fmt.Errorf("%s and %s did not circle together: %s", id1, id2, view.Analysis.Outcome)
	}

	stats, err := report.WindowStats(view.Analysis.Window, cfg)
	if err != nil {
		return err
	}
	from, err := units.ConvertTime(time.Unix(view.Analysis.Window[0].Time(), 0), *tz)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s together from %s, distance %s (%s-%s), height difference %s, %.0f%% opposing\n",
		report.PrettyDuration(view.Analysis.Match.Duration), from.Format("15:04:05 MST"),
		units.FormatLength(stats.MeanDistance, *unit), units.FormatLength(stats.MinDistance, *unit),
		units.FormatLength(stats.MaxDistance, *unit), units.FormatLength(stats.MeanAltDistance, *unit),
		100*stats.OpposingFraction)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	base := reportBase(view)

	htmlPath := filepath.Join(*outDir, base+".html")
	if err := security.ValidatePathWithinDirectory(htmlPath, *outDir); err != nil {
		return err
	}
	f, err := os.Create(htmlPath)
	if err != nil {
		return err
	}
	if err := report.RenderHTML(f, view); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintln(stdout, htmlPath)

	if *withPNG {
		pngPath := filepath.Join(*outDir, base+".png")
		if err := security.ValidatePathWithinDirectory(pngPath, *outDir); err != nil {
			return err
		}
		if err := report.RenderDistancePlot(pngPath, view); err != nil {
			return err
		}
		fmt.Fprintln(stdout, pngPath)
	}
	return nil
}

func loadTrack(dir, id string) (kurbeln.Track, error) {
	path, err := flights.TrackPath(dir, id)
	if err != nil {
		return nil, err
	}
	f, err := igc.Open(path)
	if err != nil {
		return nil, err
	}
	return f.Track(), nil
}

// reportBase names the report files after both pilots and the pair.
func reportBase(v report.PairView) string {
	base := fmt.Sprintf("%s-%s", v.Flight1, v.Flight2)
	if v.Pilot1 != "" && v.Pilot2 != "" {
		base = fmt.Sprintf("%s_%s_%s", security.SanitizeFilename(v.Pilot1), security.SanitizeFilename(v.Pilot2), base)
	}
	return base
}
