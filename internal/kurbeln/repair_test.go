package kurbeln

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair_FillsSingleSecondGap(t *testing.T) {
	t.Parallel()

	in := []ProjectedSample{
		projected(100, 0, 0, 0),
		projected(102, 1, 10, 20),
		projected(103, 2, 15, 25),
	}
	in[0].Lat, in[0].Lon, in[0].Alt = 47.0, 8.0, 1000
	in[1].Lat, in[1].Lon, in[1].Alt = 47.2, 8.4, 1100

	got := Repair(in)
	require.Len(t, got, 4)

	mid := got[1]
	assert.True(t, mid.Synthetic)
	assert.Equal(t, int64(101), mid.Time)
	assert.Equal(t, 0, mid.Index, "synthetic fix inherits the preceding index")
	assert.InDelta(t, 47.1, mid.Lat, 1e-12)
	assert.InDelta(t, 8.2, mid.Lon, 1e-12)
	assert.InDelta(t, 1050, mid.Alt, 1e-12)
	assert.InDelta(t, 5, mid.Pos.X, 1e-12)
	assert.InDelta(t, 10, mid.Pos.Y, 1e-12)

	assert.Len(t, in, 3, "input must not be modified")
}

func TestRepair_LeavesOtherGaps(t *testing.T) {
	t.Parallel()

	in := timedSamples(10, 11, 11, 14, 15, 25)
	got := Repair(in)
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("Repair changed a track without 2s gaps (-want +got):\n%s", diff)
	}
	assert.Nil(t, Repair(nil))
}

func TestRepair_Idempotent(t *testing.T) {
	t.Parallel()

	in := timedSamples(0, 2, 4, 5, 7, 10, 12, 13, 13, 15)
	once := Repair(in)
	twice := Repair(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("Repair is not idempotent (-once +twice):\n%s", diff)
	}

	synthetic := 0
	for _, s := range once {
		if s.Synthetic {
			synthetic++
		}
	}
	// gaps 0-2, 2-4, 5-7, 10-12, 13-15
	assert.Equal(t, 5, synthetic)
}
