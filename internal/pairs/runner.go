package pairs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/igc"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/monitoring"
	"github.com/banshee-data/kurbeln/internal/timeutil"
)

// Runner computes pairs and writes the results to Store.
type Runner struct {
	FS         fsutil.FileSystem
	Store      ResultStore
	TrackDir   string
	Comparator *kurbeln.Comparator

	// Planner filters out pairs whose stored result is current. Nil
	// computes every pair given to Run.
	Planner *Planner

	Workers        int
	MaxPairsPerDay int // 0 means unlimited

	// RunConfig is stored with the run record.
	RunConfig any

	Clock timeutil.Clock // defaults to the wall clock
}

func (r *Runner) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock.Now()
}

// Run computes the given pairs grouped by flight date and returns the
// final counts. Failures of single pairs are counted, not returned; the
// error is non-nil only when planning fails, the run cannot be recorded,
// or ctx is cancelled.
func (r *Runner) Run(ctx context.Context, candidates []flights.Pair) (monitoring.Snapshot, error) {
	stats := monitoring.NewRunStats(r.now())

	todo := candidates
	if r.Planner != nil {
		stale, fresh, err := r.Planner.Plan(candidates)
		if err != nil {
			return stats.Snapshot(r.now()), err
		}
		todo = stale
		stats.Fresh(fresh)
	}

	days := r.groupByDate(todo, stats)
	for _, d := range days {
		stats.Planned(len(d.pairs))
	}

	runID, err := r.Store.StartRun(r.RunConfig, r.now())
	if err != nil {
		return stats.Snapshot(r.now()), err
	}
	monitoring.Logf("run %s: %d pairs over %d dates", runID, stats.Snapshot(r.now()).Planned, len(days))

	runErr := r.runDays(ctx, runID, days, stats)

	snap := stats.Snapshot(r.now())
	if err := r.Store.FinishRun(runID, snap, r.now()); err != nil && runErr == nil {
		runErr = err
	}
	stats.Log("run "+runID+":", r.now())
	return snap, runErr
}

type day struct {
	date  string
	pairs []flights.Pair
}

// groupByDate buckets pairs by date, oldest first, applying
// MaxPairsPerDay.
func (r *Runner) groupByDate(list []flights.Pair, stats *monitoring.RunStats) []day {
	byDate := make(map[string][]flights.Pair)
	for _, p := range list {
		byDate[p.A.Date] = append(byDate[p.A.Date], p)
	}

	days := make([]day, 0, len(byDate))
	for date, ps := range byDate {
		if r.MaxPairsPerDay > 0 && len(ps) > r.MaxPairsPerDay {
			stats.Capped(len(ps) - r.MaxPairsPerDay)
			monitoring.Logf("%s: %d pairs, computing the first %d", date, len(ps), r.MaxPairsPerDay)
			ps = ps[:r.MaxPairsPerDay]
		}
		days = append(days, day{date: date, pairs: ps})
	}
	sort.Slice(days, func(i, j int) bool { return days[i].date < days[j].date })
	return days
}

func (r *Runner) runDays(ctx context.Context, runID string, days []day, stats *monitoring.RunStats) error {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}

	for _, d := range days {
		cache := newTrackCache(r.loadTrack)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for _, p := range d.pairs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				r.computePair(runID, p, cache, stats)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run %s stopped during %s: %w", runID, d.date, err)
		}
	}
	return nil
}

func (r *Runner) loadTrack(id string) (kurbeln.Track, error) {
	path, err := flights.TrackPath(r.TrackDir, id)
	if err != nil {
		return nil, err
	}
	f, err := igc.Load(r.FS, path)
	if err != nil {
		return nil, err
	}
	return f.Track(), nil
}

func (r *Runner) computePair(runID string, p flights.Pair, cache *trackCache, stats *monitoring.RunStats) {
	id1, id2 := string(p.A.ID), string(p.B.ID)

	t1, err := cache.get(id1)
	if err != nil {
		stats.Failed()
		monitoring.Logf("pair %s: %v", p, err)
		return
	}
	t2, err := cache.get(id2)
	if err != nil {
		stats.Failed()
		monitoring.Logf("pair %s: %v", p, err)
		return
	}

	res, err := r.Comparator.Compare(t1, t2)
	if err != nil {
		stats.Failed()
		monitoring.Logf("pair %s: %v", p, err)
		return
	}
	if err := r.Store.PutResult(id1, id2, res, runID, r.now()); err != nil {
		stats.Failed()
		monitoring.Logf("pair %s: %v", p, err)
		return
	}

	stats.Computed()
	switch res.Outcome {
	case kurbeln.OutcomeMatch:
		stats.Match()
	case kurbeln.OutcomeTrack1Invalid, kurbeln.OutcomeTrack2Invalid, kurbeln.OutcomeBothInvalid:
		stats.Invalid()
	}
}
