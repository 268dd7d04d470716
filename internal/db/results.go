package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/kurbeln/internal/kurbeln"
	"github.com/banshee-data/kurbeln/internal/monitoring"
)

// ErrNotFound is returned when no result is stored for a pair.
var ErrNotFound = errors.New("no stored result")

// StoredResult is a cached comparison, oriented so that Flight1 is the
// flight the caller asked about.
type StoredResult struct {
	Flight1 string `json:"flight1"`
	Flight2 string `json:"flight2"`
	kurbeln.Result
	ComputedAt time.Time `json:"computed_at"`
	RunID      string    `json:"run_id,omitempty"`
}

// orderPair returns the ids in storage order.
func orderPair(id1, id2 string) (lo, hi string, err error) {
	switch {
	case id1 < id2:
		return id1, id2, nil
	case id2 < id1:
		return id2, id1, nil
	}
	return "", "", fmt.Errorf("pair %s-%s: %w", id1, id2, kurbeln.ErrSameTrack)
}

// PutResult stores r as computed for Compare(track of id1, track of id2),
// replacing any earlier result for the unordered pair.
func (db *DB) PutResult(id1, id2 string, r kurbeln.Result, runID string, at time.Time) error {
	lo, hi, err := orderPair(id1, id2)
	if err != nil {
		return err
	}

	var m kurbeln.ThermalMatch
	hasMatch := r.Match != nil
	if hasMatch {
		m = *r.Match
	}
	nullInt := func(v int) sql.NullInt64 { return sql.NullInt64{Int64: int64(v), Valid: hasMatch} }
	nullFloat := func(v float64) sql.NullFloat64 { return sql.NullFloat64{Float64: v, Valid: hasMatch} }
	run := sql.NullString{String: runID, Valid: runID != ""}

	_, err = db.Exec(`
		INSERT INTO pair_results (
			flight_lo, flight_hi, first_flight, outcome, segments, runs,
			index_start1, index_end1, index_start2, index_end2, duration,
			lat1, lon1, lat2, lon2, computed_at, run_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (flight_lo, flight_hi) DO UPDATE SET
			first_flight = excluded.first_flight,
			outcome = excluded.outcome,
			segments = excluded.segments,
			runs = excluded.runs,
			index_start1 = excluded.index_start1,
			index_end1 = excluded.index_end1,
			index_start2 = excluded.index_start2,
			index_end2 = excluded.index_end2,
			duration = excluded.duration,
			lat1 = excluded.lat1,
			lon1 = excluded.lon1,
			lat2 = excluded.lat2,
			lon2 = excluded.lon2,
			computed_at = excluded.computed_at,
			run_id = excluded.run_id`,
		lo, hi, id1, r.Outcome.String(), r.Segments, r.Runs,
		nullInt(m.IndexStart1), nullInt(m.IndexEnd1), nullInt(m.IndexStart2), nullInt(m.IndexEnd2), nullInt(m.Duration),
		nullFloat(m.Lat1), nullFloat(m.Lon1), nullFloat(m.Lat2), nullFloat(m.Lon2),
		at.Unix(), run,
	)
	if err != nil {
		return fmt.Errorf("failed to store result %s-%s: %w", id1, id2, err)
	}
	return nil
}

const resultColumns = `flight_lo, flight_hi, first_flight, outcome, segments, runs,
	index_start1, index_end1, index_start2, index_end2, duration,
	lat1, lon1, lat2, lon2, computed_at, run_id`

type rowScanner interface {
	Scan(dest ...any) error
}

// scanResult reads one row and orients it towards viewer.
func scanResult(row rowScanner, viewer string) (*StoredResult, error) {
	var (
		lo, hi, first, outcome string
		segments, runs         int
		is1, ie1, is2, ie2, d  sql.NullInt64
		lat1, lon1, lat2, lon2 sql.NullFloat64
		computedAt             int64
		runID                  sql.NullString
	)
	if err := row.Scan(&lo, &hi, &first, &outcome, &segments, &runs,
		&is1, &ie1, &is2, &ie2, &d, &lat1, &lon1, &lat2, &lon2, &computedAt, &runID); err != nil {
		return nil, err
	}

	o, err := kurbeln.ParseOutcome(outcome)
	if err != nil {
		return nil, fmt.Errorf("pair %s-%s: %w", lo, hi, err)
	}
	second := hi
	if first == hi {
		second = lo
	}
	sr := &StoredResult{
		Flight1:    first,
		Flight2:    second,
		Result:     kurbeln.Result{Outcome: o, Segments: segments, Runs: runs},
		ComputedAt: time.Unix(computedAt, 0).UTC(),
		RunID:      runID.String,
	}
	if d.Valid {
		sr.Match = &kurbeln.ThermalMatch{
			IndexStart1: int(is1.Int64),
			IndexEnd1:   int(ie1.Int64),
			IndexStart2: int(is2.Int64),
			IndexEnd2:   int(ie2.Int64),
			Duration:    int(d.Int64),
			Lat1:        lat1.Float64,
			Lon1:        lon1.Float64,
			Lat2:        lat2.Float64,
			Lon2:        lon2.Float64,
		}
	}

	if viewer != "" && first != viewer {
		sr.Flight1, sr.Flight2 = sr.Flight2, sr.Flight1
		sr.Result = sr.Result.Flip()
	}
	return sr, nil
}

// GetResult returns the stored result for the pair as seen from id1.
func (db *DB) GetResult(id1, id2 string) (*StoredResult, error) {
	lo, hi, err := orderPair(id1, id2)
	if err != nil {
		return nil, err
	}
	row := db.QueryRow(`SELECT `+resultColumns+` FROM pair_results WHERE flight_lo = ? AND flight_hi = ?`, lo, hi)
	sr, err := scanResult(row, id1)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read result %s-%s: %w", id1, id2, err)
	}
	return sr, nil
}

// ComputedAt returns when the pair was last computed; ok is false if
// it never was.
func (db *DB) ComputedAt(id1, id2 string) (at time.Time, ok bool, err error) {
	lo, hi, err := orderPair(id1, id2)
	if err != nil {
		return time.Time{}, false, err
	}
	var unix int64
	err = db.QueryRow(`SELECT computed_at FROM pair_results WHERE flight_lo = ? AND flight_hi = ?`, lo, hi).Scan(&unix)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read computed_at %s-%s: %w", id1, id2, err)
	}
	return time.Unix(unix, 0).UTC(), true, nil
}

// ResultsForFlight returns every stored result involving id, oriented
// from id, longest match first.
func (db *DB) ResultsForFlight(id string) ([]StoredResult, error) {
	rows, err := db.Query(`SELECT `+resultColumns+` FROM pair_results
		WHERE flight_lo = ? OR flight_hi = ?
		ORDER BY COALESCE(duration, 0) DESC, flight_lo, flight_hi`, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query results for %s: %w", id, err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		sr, err := scanResult(rows, id)
		if err != nil {
			return nil, fmt.Errorf("failed to scan result for %s: %w", id, err)
		}
		out = append(out, *sr)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// StaleBefore lists the stored pairs (in storage order) computed before t.
func (db *DB) StaleBefore(t time.Time) ([][2]string, error) {
	rows, err := db.Query(`SELECT flight_lo, flight_hi FROM pair_results WHERE computed_at < ? ORDER BY flight_lo, flight_hi`, t.Unix())
	if err != nil {
		return nil, fmt.Errorf("failed to query stale results: %w", err)
	}
	defer rows.Close()

	var out [][2]string
	for rows.Next() {
		var p [2]string
		if err := rows.Scan(&p[0], &p[1]); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// StartRun records the start of a batch run and returns its id. cfg is
// stored as JSON for later inspection.
func (db *DB) StartRun(cfg any, at time.Time) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode run config: %w", err)
	}
	id := uuid.NewString()
	if _, err := db.Exec(`INSERT INTO compute_runs (run_id, started_at, config_json) VALUES (?, ?, ?)`,
		id, at.Unix(), string(cfgJSON)); err != nil {
		return "", fmt.Errorf("failed to record run start: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counters of a run.
func (db *DB) FinishRun(runID string, s monitoring.Snapshot, at time.Time) error {
	res, err := db.Exec(`UPDATE compute_runs SET finished_at = ?, planned = ?, computed = ?, matches = ?, failed = ? WHERE run_id = ?`,
		at.Unix(), s.Planned, s.Computed, s.Matches, s.Failed, runID)
	if err != nil {
		return fmt.Errorf("failed to record run end: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	return nil
}

// ComputeRun is one row of compute_runs.
type ComputeRun struct {
	ID         string     `json:"run_id"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	ConfigJSON string     `json:"config"`
	Planned    int        `json:"planned"`
	Computed   int        `json:"computed"`
	Matches    int        `json:"matches"`
	Failed     int        `json:"failed"`
}

// GetRun returns the bookkeeping row of a run.
func (db *DB) GetRun(runID string) (*ComputeRun, error) {
	var (
		r        ComputeRun
		started  int64
		finished sql.NullInt64
	)
	err := db.QueryRow(`SELECT run_id, started_at, finished_at, config_json, planned, computed, matches, failed
		FROM compute_runs WHERE run_id = ?`, runID).Scan(
		&r.ID, &started, &finished, &r.ConfigJSON, &r.Planned, &r.Computed, &r.Matches, &r.Failed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run %s: %w", runID, err)
	}
	r.StartedAt = time.Unix(started, 0).UTC()
	if finished.Valid {
		t := time.Unix(finished.Int64, 0).UTC()
		r.FinishedAt = &t
	}
	return &r, nil
}
