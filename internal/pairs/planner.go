package pairs

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/monitoring"
)

// ResultStore persists comparison results. *db.DB implements it.
type ResultStore interface {
	PutResult(id1, id2 string, r kurbeln.Result, runID string, at time.Time) error
	ComputedAt(id1, id2 string) (at time.Time, ok bool, err error)
	StartRun(cfg any, at time.Time) (string, error)
	FinishRun(runID string, s monitoring.Snapshot, at time.Time) error
}

// Planner decides which pairs need computing. A pair is stale when it
// has no stored result, or the result is older than either track file
// or the tuning file.
type Planner struct {
	FS         fsutil.FileSystem
	Store      ResultStore
	TrackDir   string
	TuningPath string // optional
}

// Stale reports whether p must be (re)computed.
func (pl *Planner) Stale(p flights.Pair) (bool, error) {
	at, ok, err := pl.Store.ComputedAt(string(p.A.ID), string(p.B.ID))
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}

	newest, missing, err := pl.newestInput(p)
	if err != nil {
		return false, err
	}
	if missing {
		return true, nil
	}
	// computed_at has second resolution.
	return at.Before(newest.Truncate(time.Second)), nil
}

// newestInput returns the latest modification time of the pair's inputs.
// missing is set when a track file does not exist.
func (pl *Planner) newestInput(p flights.Pair) (newest time.Time, missing bool, err error) {
	var paths []string
	for _, id := range []flights.FlexString{p.A.ID, p.B.ID} {
		path, err := flights.TrackPath(pl.TrackDir, string(id))
		if err != nil {
			return time.Time{}, false, err
		}
		paths = append(paths, path)
	}
	if pl.TuningPath != "" {
		paths = append(paths, pl.TuningPath)
	}

	for _, path := range paths {
		info, err := pl.FS.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			return time.Time{}, true, nil
		}
		if err != nil {
			return time.Time{}, false, fmt.Errorf("failed to stat %s: %w", path, err)
		}
		if info.ModTime().After(newest) {
			newest = info.ModTime()
		}
	}
	return newest, false, nil
}

// Plan splits candidates into the stale pairs, in input order, and the
// number already up to date.
func (pl *Planner) Plan(candidates []flights.Pair) (stale []flights.Pair, fresh int, err error) {
	for _, p := range candidates {
		s, err := pl.Stale(p)
		if err != nil {
			return nil, 0, fmt.Errorf("pair %s: %w", p, err)
		}
		if s {
			stale = append(stale, p)
		} else {
			fresh++
		}
	}
	return stale, fresh, nil
}
