package kurbeln

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

// assertFlipSymmetric checks that swapping the arguments only flips the result.
func assertFlipSymmetric(t *testing.T, c *Comparator, a, b Track) {
	t.Helper()
	ab, errAB := c.Compare(a, b)
	ba, errBA := c.Compare(b, a)
	require.NoError(t, errAB)
	require.NoError(t, errBA)
	if diff := cmp.Diff(ab.Flip(), ba); diff != "" {
		t.Errorf("Compare(b, a) != Compare(a, b).Flip() (-want +got):\n%s", diff)
	}
}

func TestCompare_Scenarios(t *testing.T) {
	t.Parallel()

	const n = 200
	origin := r2.Vec{}

	// Two pilots on opposite sides of the same 50m core, same direction.
	coCircleA := buildTrack(testStart, n, 1500, circle(origin, 50, 30, 0))
	coCircleB := buildTrack(testStart, n, 1520, circle(origin, 50, 30, 180))

	// Mirror-image circling in two adjacent cores, opposite directions.
	counterA := buildTrack(testStart, n, 1500, circle(origin, 10, -20, 0))
	counterB := buildTrack(testStart, n, 1500, circle(r2.Vec{X: 100}, 10, 20, 180))

	// Same circle as coCircleA, 2km away.
	farB := buildTrack(testStart, n, 1500, circle(r2.Vec{X: 2000}, 50, 30, 0))

	// Parallel lines, 100m apart.
	formationA := buildTrack(testStart, n, 1500, line(origin, r2.Vec{X: 10}))
	formationB := buildTrack(testStart, n, 1500, line(r2.Vec{Y: 100}, r2.Vec{X: 10}))

	// Co-circling but 200m stacked.
	stackedB := buildTrack(testStart, n, 1700, circle(origin, 50, 30, 180))

	fullMatch := func(a, b Track) *ThermalMatch {
		return &ThermalMatch{
			IndexEnd1: n,
			IndexEnd2: n,
			Duration:  n,
			Lat1:      a[n-1].Lat,
			Lon1:      a[n-1].Lon,
			Lat2:      b[n-1].Lat,
			Lon2:      b[n-1].Lon,
		}
	}

	tests := []struct {
		name string
		a, b Track
		want Result
	}{
		{
			name: "co-circling",
			a:    coCircleA, b: coCircleB,
			want: Result{Outcome: OutcomeMatch, Match: fullMatch(coCircleA, coCircleB), Segments: 1, Runs: 1},
		},
		{
			name: "counter-rotating neighbours",
			a:    counterA, b: counterB,
			want: Result{Outcome: OutcomeMatch, Match: fullMatch(counterA, counterB), Segments: 1, Runs: 1},
		},
		{
			name: "2km apart",
			a:    coCircleA, b: farB,
			want: Result{Outcome: OutcomeNoQualifyingWindow, Segments: 1, Runs: 0},
		},
		{
			name: "formation flying",
			a:    formationA, b: formationB,
			want: Result{Outcome: OutcomeNoQualifyingWindow, Segments: 1, Runs: 1},
		},
		{
			name: "vertically separated",
			a:    coCircleA, b: stackedB,
			want: Result{Outcome: OutcomeNoQualifyingWindow, Segments: 1, Runs: 0},
		},
	}

	c := NewComparator(DefaultConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compare(tt.a, tt.b)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Compare mismatch (-want +got):\n%s", diff)
			}
			if got.Found() {
				assert.GreaterOrEqual(t, got.Match.Duration, c.Config().MinSeconds)
			}
			assertFlipSymmetric(t, c, tt.a, tt.b)
		})
	}
}

func TestCompare_RepairedDropout(t *testing.T) {
	t.Parallel()

	const n = 200
	a := buildTrack(testStart, n, 1500, circle(r2.Vec{}, 50, 30, 0))
	b := dropSamples(buildTrack(testStart, n, 1500, circle(r2.Vec{}, 50, 30, 180)), 100)

	c := NewComparator(DefaultConfig())
	got, err := c.Compare(a, b)
	require.NoError(t, err)
	require.True(t, got.Found())

	assert.Equal(t, n, got.Match.Duration, "single-second dropout is bridged")
	assert.Equal(t, 0, got.Match.IndexStart2)
	assert.Equal(t, n-1, got.Match.IndexEnd2, "indices refer to the unrepaired track")
	assert.Equal(t, n, got.Match.IndexEnd1)
	assertFlipSymmetric(t, c, a, b)
}

func TestCompare_PicksLongestThermal(t *testing.T) {
	t.Parallel()

	const n = 240
	a := buildTrack(testStart, n, 1500, circle(r2.Vec{}, 50, 30, 0))
	together := circle(r2.Vec{}, 50, 30, 180)
	apart := circle(r2.Vec{X: 3000}, 50, 30, 180)
	b := buildTrack(testStart, n, 1500, func(k int) r2.Vec {
		if k >= 80 && k < 120 {
			return apart(k)
		}
		return together(k)
	})

	c := NewComparator(DefaultConfig())
	an, err := c.Analyze(a, b)
	require.NoError(t, err)
	require.True(t, an.Found())

	assert.Equal(t, 2, an.Runs)
	assert.Equal(t, 120, an.Match.IndexStart1)
	assert.Equal(t, 240, an.Match.IndexEnd1)
	assert.Equal(t, 120, an.Match.Duration)
	assert.Len(t, an.Window, 120)
	assertFlipSymmetric(t, c, a, b)
}

func TestCompare_Outcomes(t *testing.T) {
	t.Parallel()

	const n = 120
	good := buildTrack(testStart, n, 1500, circle(r2.Vec{}, 50, 30, 0))
	other := buildTrack(testStart, n, 1500, circle(r2.Vec{}, 50, 30, 180))
	later := buildTrack(testStart+n, n, 1500, circle(r2.Vec{}, 50, 30, 180))

	var gaps []int
	for i := 5; i < n; i += 10 {
		gaps = append(gaps, i)
	}
	ragged := dropSamples(other, gaps...)
	ragged2 := dropSamples(good, gaps...)

	c := NewComparator(DefaultConfig())
	tests := []struct {
		name string
		a, b Track
		want Outcome
	}{
		{"track1 invalid", ragged, good, OutcomeTrack1Invalid},
		{"track2 invalid", good, ragged, OutcomeTrack2Invalid},
		{"both invalid", ragged, ragged2, OutcomeBothInvalid},
		{"no overlap", good, later, OutcomeNoOverlap},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Compare(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Nil(t, got.Match)
			assertFlipSymmetric(t, c, tt.a, tt.b)
		})
	}
}

func TestCompare_ContractViolations(t *testing.T) {
	t.Parallel()

	track := buildTrack(testStart, 100, 1500, circle(r2.Vec{}, 50, 30, 0))
	c := NewComparator(DefaultConfig())

	_, err := c.Compare(track, track)
	assert.ErrorIs(t, err, ErrSameTrack)

	copied := append(Track(nil), track...)
	_, err = c.Compare(track, copied)
	assert.NoError(t, err, "equal content in a different slice is a legitimate comparison")

	_, err = c.Compare(track, track[:1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTooFewSamples))
	assert.Contains(t, err.Error(), "track2")

	_, err = Kurbeln(nil, track, DefaultConfig())
	assert.ErrorIs(t, err, ErrTooFewSamples)
	assert.Contains(t, err.Error(), "track1")
}

func TestCompare_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	a := dropSamples(buildTrack(testStart, 150, 1500, circle(r2.Vec{}, 50, 30, 0)), 40)
	b := buildTrack(testStart, 150, 1500, circle(r2.Vec{}, 50, 30, 180))
	wantA := append(Track(nil), a...)
	wantB := append(Track(nil), b...)

	_, err := Kurbeln(a, b, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, wantA, a)
	assert.Equal(t, wantB, b)
}

func TestThermalMatch_JSON(t *testing.T) {
	t.Parallel()

	m := ThermalMatch{IndexStart1: 1, IndexEnd1: 2, IndexStart2: 3, IndexEnd2: 4, Duration: 60, Lat1: 47.9, Lon1: 7.8, Lat2: 47.91, Lon2: 7.81}
	b, err := json.Marshal(m)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(b, &keys))
	for _, k := range []string{"index_start1", "index_end1", "index_start2", "index_end2", "duration", "lat1", "lon1", "lat2", "lon2"} {
		assert.Contains(t, keys, k)
	}
	assert.Len(t, keys, 9)

	assert.Equal(t, m, m.Flip().Flip())
	assert.Equal(t, 3, m.Flip().IndexStart1)
}

func TestOutcome_Text(t *testing.T) {
	t.Parallel()

	for o := OutcomeMatch; o <= OutcomeNoQualifyingWindow; o++ {
		b, err := o.MarshalText()
		require.NoError(t, err)
		var back Outcome
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, o, back)
	}

	_, err := ParseOutcome("bogus")
	assert.Error(t, err)
	_, err = Outcome(0).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Outcome(42)", Outcome(42).String())
}
