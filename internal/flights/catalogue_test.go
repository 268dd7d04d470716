package flights

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/kurbeln/internal/fsutil"
)

const catalogueJSON = `[
  {"IDFlight": 101, "FKPilot": "7", "FirstName": "Anna", "LastName": "Berger",
   "FlightDate": "2022-06-28", "FlightStartTime": "11:00:00", "FlightEndTime": "14:30:00",
   "TakeoffWaypointName": "Schauinsland"},
  {"IDFlight": "99", "FKPilot": 8, "FirstName": "Ben", "LastName": "Cole",
   "FlightDate": "2022-06-28", "FlightStartTime": "12:15:00", "FlightEndTime": "13:00:00",
   "TakeoffWaypointName": "Kandel"},
  {"IDFlight": "1000", "FKPilot": 9, "FirstName": "", "LastName": "Dorn",
   "FlightDate": "2022-06-28", "FlightStartTime": "15:00:00", "FlightEndTime": "16:00:00",
   "TakeoffWaypointName": "Schauinsland"},
  {"IDFlight": "102", "FKPilot": 7, "FirstName": "Anna", "LastName": "Berger",
   "FlightDate": "2022-06-29", "FlightStartTime": "11:00:00", "FlightEndTime": "12:00:00",
   "TakeoffWaypointName": "Schauinsland"}
]`

func TestParse(t *testing.T) {
	c, err := Parse(strings.NewReader(catalogueJSON))
	require.NoError(t, err)
	require.Len(t, c.Flights, 4)

	f, ok := c.ByID("101")
	require.True(t, ok)
	assert.Equal(t, FlexString("7"), f.PilotID)
	assert.Equal(t, "Anna Berger", f.Pilot())
	assert.Equal(t, "11:00:00", f.Start().Format("15:04:05"))
	assert.Equal(t, "2022-06-28", f.End().Format("2006-01-02"))

	f, ok = c.ByID("99")
	require.True(t, ok)
	assert.Equal(t, FlexString("8"), f.PilotID, "numeric pilot id")

	f, _ = c.ByID("1000")
	assert.Equal(t, "Dorn", f.Pilot())

	_, ok = c.ByID("5")
	assert.False(t, ok)

	assert.Equal(t, []string{"2022-06-28", "2022-06-29"}, c.Dates())
	groups := c.GroupByDate()
	assert.Len(t, groups["2022-06-28"], 3)
	assert.Len(t, groups["2022-06-29"], 1)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"bad id":       `[{"IDFlight": "12/..", "FlightDate": "2022-06-28", "FlightStartTime": "11:00:00", "FlightEndTime": "12:00:00"}]`,
		"bad time":     `[{"IDFlight": 1, "FlightDate": "2022-06-28", "FlightStartTime": "11h", "FlightEndTime": "12:00:00"}]`,
		"duplicate id": `[{"IDFlight": 1, "FlightDate": "2022-06-28", "FlightStartTime": "11:00:00", "FlightEndTime": "12:00:00"},{"IDFlight": "1", "FlightDate": "2022-06-28", "FlightStartTime": "11:00:00", "FlightEndTime": "12:00:00"}]`,
		"object id":    `[{"IDFlight": {}, "FlightDate": "2022-06-28", "FlightStartTime": "11:00:00", "FlightEndTime": "12:00:00"}]`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	mfs := fsutil.NewMemoryFileSystem()
	require.NoError(t, mfs.WriteFile("/contest/flights.json", []byte(catalogueJSON), 0644))

	c, err := Load(mfs, "/contest/flights.json")
	require.NoError(t, err)
	assert.Len(t, c.Flights, 4)

	_, err = Load(mfs, "/contest/missing.json")
	assert.Error(t, err)
}

func TestPairs(t *testing.T) {
	c, err := Parse(strings.NewReader(catalogueJSON))
	require.NoError(t, err)

	pairs := Pairs(c.GroupByDate()["2022-06-28"])
	require.Len(t, pairs, 1, "1000 lands after the others")
	assert.Equal(t, FlexString("99"), pairs[0].A.ID, "numeric order puts 99 first")
	assert.Equal(t, FlexString("101"), pairs[0].B.ID)
	assert.Equal(t, "99-101", pairs[0].String())

	// Across dates nothing pairs.
	assert.Empty(t, Pairs(c.Flights[2:]))
}

func TestCanPair(t *testing.T) {
	c, err := Parse(strings.NewReader(catalogueJSON))
	require.NoError(t, err)
	a, _ := c.ByID("101")
	b, _ := c.ByID("99")
	late, _ := c.ByID("1000")
	other, _ := c.ByID("102")

	assert.True(t, CanPair(a, b))
	assert.True(t, CanPair(b, a))
	assert.False(t, CanPair(a, a))
	assert.False(t, CanPair(a, late))
	assert.False(t, CanPair(a, other))

	// touching times still overlap
	touch := late
	touch.ID = "1001"
	touch.start = a.End()
	assert.True(t, CanPair(a, touch))
}

func TestLessID(t *testing.T) {
	assert.True(t, LessID("99", "101"))
	assert.False(t, LessID("101", "99"))
	assert.False(t, LessID("5", "5"))
	assert.True(t, LessID("abc", "abd"), "falls back to string order")
}

func TestTrackPath(t *testing.T) {
	p, err := TrackPath("/srv/flights", "1234")
	require.NoError(t, err)
	assert.Equal(t, "/srv/flights/1234.igc.gz", p)

	for _, bad := range []string{"", "../1234", "12/34", "1234.igc"} {
		_, err := TrackPath("/srv/flights", bad)
		assert.Error(t, err, bad)
	}
}
