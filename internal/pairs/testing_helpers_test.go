package pairs

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/banshee-data/kurbeln/internal/flights"
	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/monitoring"
	"github.com/banshee-data/kurbeln/internal/testutil"
	"github.com/banshee-data/kurbeln/internal/timeutil"
)

const (
	trackDir = "/archive/tracks"
	testDate = "2024-06-01"
)

var (
	fileTime = time.Date(2024, 6, 1, 18, 0, 0, 0, time.UTC)
	runTime  = fileTime.Add(time.Hour)
	logStart = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func writeTrack(t *testing.T, mfs *fsutil.MemoryFileSystem, id string, fixes []testutil.Fix) {
	t.Helper()
	path, err := flights.TrackPath(trackDir, id)
	require.NoError(t, err)
	require.NoError(t, mfs.WriteFile(path, testutil.TrackLog(t, logStart, fixes), 0644))
}

func pair(a, b string) flights.Pair {
	return flights.Pair{
		A: flights.Flight{ID: flights.FlexString(a), Date: testDate},
		B: flights.Flight{ID: flights.FlexString(b), Date: testDate},
	}
}

// contestDay writes four tracks: 101 and 102 circle together, 103 is
// 3 km away and 104 has a single fix.
func contestDay(t *testing.T) *fsutil.MemoryFileSystem {
	t.Helper()
	mfs := fsutil.NewMemoryFileSystem()
	mfs.Now = func() time.Time { return fileTime }

	writeTrack(t, mfs, "101", testutil.Circle(47.92, 7.90, 50, 30, 0, 1500, 180))
	writeTrack(t, mfs, "102", testutil.Circle(47.92, 7.90, 50, 30, 180, 1520, 180))
	writeTrack(t, mfs, "103", testutil.Circle(47.947, 7.90, 50, 30, 0, 1500, 180))
	writeTrack(t, mfs, "104", testutil.Circle(47.92, 7.90, 50, 30, 0, 1500, 1))
	return mfs
}

type storedResult struct {
	first  string
	result kurbeln.Result
	runID  string
	at     time.Time
}

// memStore is an in-memory ResultStore.
type memStore struct {
	mu      sync.Mutex
	results map[[2]string]storedResult
	runs    map[string]*monitoring.Snapshot
	order   []string
}

func newMemStore() *memStore {
	return &memStore{
		results: make(map[[2]string]storedResult),
		runs:    make(map[string]*monitoring.Snapshot),
	}
}

func key(id1, id2 string) [2]string {
	if id2 < id1 {
		id1, id2 = id2, id1
	}
	return [2]string{id1, id2}
}

func (s *memStore) PutResult(id1, id2 string, r kurbeln.Result, runID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.runs[runID]; !ok {
		return fmt.Errorf("unknown run %q", runID)
	}
	s.results[key(id1, id2)] = storedResult{first: id1, result: r, runID: runID, at: at}
	return nil
}

func (s *memStore) ComputedAt(id1, id2 string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[key(id1, id2)]
	return r.at, ok, nil
}

func (s *memStore) StartRun(cfg any, at time.Time) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("run-%d", len(s.order)+1)
	s.order = append(s.order, id)
	s.runs[id] = nil
	return id, nil
}

func (s *memStore) FinishRun(runID string, snap monitoring.Snapshot, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[runID] = &snap
	return nil
}

func (s *memStore) get(id1, id2 string) (storedResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.results[key(id1, id2)]
	return r, ok
}

func newRunner(mfs *fsutil.MemoryFileSystem, store *memStore) *Runner {
	return &Runner{
		FS:         mfs,
		Store:      store,
		TrackDir:   trackDir,
		Comparator: kurbeln.NewComparator(kurbeln.DefaultConfig()),
		Workers:    3,
		Clock:      timeutil.NewMockClock(runTime),
	}
}
