package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/kurbeln/internal/db"
	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/pairs"
	"github.com/banshee-data/kurbeln/internal/security"
	"github.com/banshee-data/kurbeln/internal/timeutil"
)

var _ pairs.ResultStore = (*db.DB)(nil)

func handleUpdate(args []string, stdout, stderr io.Writer) error {
	fset := newFlagSet("update", stderr)
	flightsPath := fset.String("flights", "_tmp/flights.json", "Contest flight catalogue")
	trackDir := fset.String("tracks", "_flights", "Directory of <id>.igc.gz track logs")
	dbPath := fset.String("db", "kurbeln.db", "Result database")
	configPath := fset.String("config", "", "Tuning config JSON")
	date := fset.String("date", "", "Only compute pairs of this date (YYYY-MM-DD)")
	workers := fset.Int("workers", 0, "Parallel comparisons (overrides config)")
	force := fset.Bool("force", false, "Recompute pairs even if their stored result is current")
	exportDir := fset.String("export", "", "Write <id>.kurbeln.json per flight into this directory")
	if err := parseFlags(fset, args); err != nil {
		return err
	}
	if fset.NArg() != 0 {
		fset.Usage()
		return errUsage
	}

	tuning, err := loadTuning(*configPath)
	if err != nil {
		return err
	}
	if *workers > 0 {
		tuning.Workers = workers
	}

	osfs := fsutil.OSFileSystem{}
	cat, err := flights.Load(osfs, *flightsPath)
	if err != nil {
		return err
	}

	store, err := db.Open(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	var candidates []flights.Pair
	dates := cat.Dates()
	byDate := cat.GroupByDate()
	for _, d := range dates {
		if *date != "" && d != *date {
			continue
		}
		ps := flights.Pairs(byDate[d])
		fmt.Fprintf(stdout, "Date: %s (%d flights, %d pairs)\n", d, len(byDate[d]), len(ps))
		candidates = append(candidates, ps...)
	}

	runner := &pairs.Runner{
		FS:             osfs,
		Store:          store,
		TrackDir:       *trackDir,
		Comparator:     kurbeln.NewComparator(kurbeln.ConfigFromTuning(tuning)),
		Workers:        tuning.GetWorkers(),
		MaxPairsPerDay: tuning.GetMaxPairsPerDay(),
		RunConfig:      tuning,
		Clock:          timeutil.RealClock{},
	}
	if !*force {
		runner.Planner = &pairs.Planner{FS: osfs, Store: store, TrackDir: *trackDir, TuningPath: *configPath}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	snap, err := runner.Run(ctx, candidates)
	fmt.Fprintf(stdout, "Done: %s\n", snap)
	if err != nil {
		return err
	}

	if *exportDir != "" {
		return exportResults(store, cat, *date, *exportDir, stdout)
	}
	return nil
}

// exportResults writes one JSON file per catalogue flight with all of its
// stored results, replacing files atomically.
func exportResults(store *db.DB, cat *flights.Catalogue, date, dir string, stdout io.Writer) error {
	if err := security.ValidateExportPath(dir); err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	n := 0
	for _, f := range cat.Flights {
		if date != "" && f.Date != date {
			continue
		}
		id := string(f.ID)
		results, err := store.ResultsForFlight(id)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode results for %s: %w", id, err)
		}

		path := filepath.Join(dir, id+".kurbeln.json")
		if err := security.ValidatePathWithinDirectory(path, dir); err != nil {
			return err
		}
		if err := fsutil.WriteFileAtomic(fsutil.OSFileSystem{}, path, append(data, '\n')); err != nil {
			return err
		}
		n++
	}
	fmt.Fprintf(stdout, "Exported %d flights to %s\n", n, dir)
	return nil
}
