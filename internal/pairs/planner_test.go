package pairs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
)

func newPlanner(mfs *fsutil.MemoryFileSystem, store *memStore) *Planner {
	return &Planner{FS: mfs, Store: store, TrackDir: trackDir}
}

func seed(t *testing.T, store *memStore, id1, id2 string, at time.Time) {
	t.Helper()
	runID, err := store.StartRun(nil, at)
	require.NoError(t, err)
	require.NoError(t, store.PutResult(id1, id2, kurbeln.Result{Outcome: kurbeln.OutcomeNoOverlap}, runID, at))
}

func TestPlanner_Stale(t *testing.T) {
	mfs := contestDay(t)
	store := newMemStore()
	pl := newPlanner(mfs, store)

	stale, err := pl.Stale(pair("101", "102"))
	require.NoError(t, err)
	assert.True(t, stale, "never computed")

	seed(t, store, "101", "102", runTime)
	stale, err = pl.Stale(pair("101", "102"))
	require.NoError(t, err)
	assert.False(t, stale)

	stale, err = pl.Stale(pair("102", "101"))
	require.NoError(t, err)
	assert.False(t, stale, "orientation does not matter")

	path, _ := flights.TrackPath(trackDir, "102")
	require.NoError(t, mfs.Touch(path, runTime.Add(time.Minute)))
	stale, err = pl.Stale(pair("101", "102"))
	require.NoError(t, err)
	assert.True(t, stale, "track newer than result")
}

func TestPlanner_SubSecondMtimeIsFresh(t *testing.T) {
	mfs := contestDay(t)
	store := newMemStore()
	pl := newPlanner(mfs, store)

	// The stored timestamp loses the fraction.
	seed(t, store, "101", "102", fileTime)
	path, _ := flights.TrackPath(trackDir, "101")
	require.NoError(t, mfs.Touch(path, fileTime.Add(400*time.Millisecond)))

	stale, err := pl.Stale(pair("101", "102"))
	require.NoError(t, err)
	assert.False(t, stale)
}

func TestPlanner_TuningFileInvalidatesAll(t *testing.T) {
	mfs := contestDay(t)
	store := newMemStore()
	require.NoError(t, mfs.WriteFile("/etc/kurbeln/tuning.json", []byte(`{}`), 0644))

	pl := newPlanner(mfs, store)
	pl.TuningPath = "/etc/kurbeln/tuning.json"
	seed(t, store, "101", "102", runTime)
	seed(t, store, "101", "103", runTime)

	stale, fresh, err := pl.Plan([]flights.Pair{pair("101", "102"), pair("101", "103")})
	require.NoError(t, err)
	assert.Empty(t, stale)
	assert.Equal(t, 2, fresh)

	require.NoError(t, mfs.Touch(pl.TuningPath, runTime.Add(time.Hour)))
	stale, fresh, err = pl.Plan([]flights.Pair{pair("101", "102"), pair("101", "103")})
	require.NoError(t, err)
	assert.Len(t, stale, 2)
	assert.Zero(t, fresh)
}

func TestPlanner_MissingTrackIsStale(t *testing.T) {
	mfs := contestDay(t)
	store := newMemStore()
	seed(t, store, "101", "999", runTime)

	stale, err := newPlanner(mfs, store).Stale(pair("101", "999"))
	require.NoError(t, err)
	assert.True(t, stale)
}

func TestPlanner_RejectsBadID(t *testing.T) {
	mfs := contestDay(t)
	store := newMemStore()
	seed(t, store, "101", "../x", runTime)

	_, _, err := newPlanner(mfs, store).Plan([]flights.Pair{pair("101", "../x")})
	assert.Error(t, err)
}
