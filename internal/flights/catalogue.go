// Package flights loads the contest flight catalogue and decides which
// pairs of flights are worth comparing.
package flights

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/banshee-data/kurbeln/internal/fsutil"
	"github.com/banshee-data/kurbeln/internal/security"
)

// FlexString accepts both JSON strings and numbers. The contest export
// is not consistent about which one it uses for ids.
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*s = FlexString(n.String())
	return nil
}

// Flight is one entry of flights.json.
type Flight struct {
	ID        FlexString `json:"IDFlight"`
	PilotID   FlexString `json:"FKPilot"`
	FirstName string     `json:"FirstName"`
	LastName  string     `json:"LastName"`
	Date      string     `json:"FlightDate"`      // 2006-01-02
	StartTime string     `json:"FlightStartTime"` // 15:04:05, local
	EndTime   string     `json:"FlightEndTime"`
	Takeoff   string     `json:"TakeoffWaypointName"`

	start, end time.Time
}

// Pilot returns the display name.
func (f Flight) Pilot() string {
	switch {
	case f.FirstName == "":
		return f.LastName
	case f.LastName == "":
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

// Start returns the takeoff time on the flight date.
func (f Flight) Start() time.Time { return f.start }

// End returns the landing time on the flight date.
func (f Flight) End() time.Time { return f.end }

func (f *Flight) resolve() error {
	if err := security.ValidateFlightID(string(f.ID)); err != nil {
		return err
	}
	var err error
	if f.start, err = time.Parse("2006-01-02 15:04:05", f.Date+" "+f.StartTime); err != nil {
		return fmt.Errorf("flight %s: bad start: %w", f.ID, err)
	}
	if f.end, err = time.Parse("2006-01-02 15:04:05", f.Date+" "+f.EndTime); err != nil {
		return fmt.Errorf("flight %s: bad end: %w", f.ID, err)
	}
	return nil
}

// Catalogue is the set of flights of one contest.
type Catalogue struct {
	Flights []Flight
	byID    map[FlexString]int
}

// Parse decodes a flights.json document.
func Parse(r io.Reader) (*Catalogue, error) {
	var list []Flight
	if err := json.NewDecoder(r).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to parse flight catalogue: %w", err)
	}

	c := &Catalogue{Flights: list, byID: make(map[FlexString]int, len(list))}
	for i := range c.Flights {
		f := &c.Flights[i]
		if err := f.resolve(); err != nil {
			return nil, fmt.Errorf("catalogue entry %d: %w", i, err)
		}
		if _, dup := c.byID[f.ID]; dup {
			return nil, fmt.Errorf("catalogue entry %d: duplicate flight id %s", i, f.ID)
		}
		c.byID[f.ID] = i
	}
	return c, nil
}

// Load reads the catalogue at path.
func Load(fsys fsutil.FileSystem, path string) (*Catalogue, error) {
	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read flight catalogue: %w", err)
	}
	return Parse(bytes.NewReader(data))
}

// ByID looks up a flight.
func (c *Catalogue) ByID(id string) (Flight, bool) {
	i, ok := c.byID[FlexString(id)]
	if !ok {
		return Flight{}, false
	}
	return c.Flights[i], true
}

// GroupByDate buckets the flights by FlightDate. Within a bucket the
// catalogue order is kept.
func (c *Catalogue) GroupByDate() map[string][]Flight {
	out := make(map[string][]Flight)
	for _, f := range c.Flights {
		out[f.Date] = append(out[f.Date], f)
	}
	return out
}

// Dates returns the flight dates in ascending order.
func (c *Catalogue) Dates() []string {
	groups := c.GroupByDate()
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Pair is an unordered pair of flights, stored with the lower id first.
type Pair struct {
	A, B Flight
}

func (p Pair) String() string { return fmt.Sprintf("%s-%s", p.A.ID, p.B.ID) }

// CanPair reports whether two flights could have met in the air: distinct
// ids, same date, overlapping airborne times.
func CanPair(a, b Flight) bool {
	if a.ID == b.ID || a.Date != b.Date {
		return false
	}
	if a.End().Before(b.Start()) || b.End().Before(a.Start()) {
		return false
	}
	return true
}

// Pairs returns every pair of the given flights that CanPair allows,
// sorted by (A, B) id.
func Pairs(list []Flight) []Pair {
	var out []Pair
	for i := range list {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if !CanPair(a, b) {
				continue
			}
			if LessID(b.ID, a.ID) {
				a, b = b, a
			}
			out = append(out, Pair{A: a, B: b})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A.ID != out[j].A.ID {
			return LessID(out[i].A.ID, out[j].A.ID)
		}
		return LessID(out[i].B.ID, out[j].B.ID)
	})
	return out
}

// LessID orders flight ids numerically.
func LessID(a, b FlexString) bool {
	na, errA := strconv.ParseUint(string(a), 10, 64)
	nb, errB := strconv.ParseUint(string(b), 10, 64)
	if errA != nil || errB != nil {
		return a < b
	}
	return na < nb
}

// TrackPath returns the archive path of a flight's log, <dir>/<id>.igc.gz.
// Only numeric ids are accepted, so the result cannot leave dir.
func TrackPath(dir string, id string) (string, error) {
	if err := security.ValidateFlightID(id); err != nil {
		return "", err
	}
	return filepath.Join(dir, id+".igc.gz"), nil
}
