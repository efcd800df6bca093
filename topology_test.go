package mrt3sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/testutil"
)

func TestBuildTopologyRegular(t *testing.T) {
	tp, err := buildTopology(testutil.ThreeStationConfig(), model.SchemeRegular)
	require.NoError(t, err)

	require.Len(t, tp.Stations, 3)
	assert.True(t, tp.Station(1).IsTerminus)
	assert.False(t, tp.Station(2).IsTerminus)
	assert.True(t, tp.Station(3).IsTerminus)

	for _, st := range tp.Stations {
		assert.Equal(t, model.StationAB, st.Type)
	}

	// 2*(n-1) directed segments, 1 km each.
	require.Len(t, tp.Segments, 4)
	south := tp.Segment(1, 2)
	require.NotNil(t, south)
	assert.Equal(t, model.Southbound, south.Direction)
	assert.Equal(t, 1000.0, south.Length)

	north := tp.Segment(2, 1)
	require.NotNil(t, north)
	assert.Equal(t, model.Northbound, north.Direction)

	// Cross-links and terminus nils.
	assert.Same(t, south, tp.Station(1).Tracks[model.Southbound])
	assert.Nil(t, tp.Station(1).Tracks[model.Northbound])
	assert.Same(t, north, tp.Station(2).Tracks[model.Northbound])
	assert.Nil(t, tp.Station(3).Tracks[model.Southbound])

	assert.Same(t, north, tp.DepotSegment())

	// Single period wants one train; it starts inactive at the
	// north terminus.
	require.Len(t, tp.Trains, 1)
	train := tp.Trains[0]
	assert.Equal(t, model.ServiceAB, train.ServiceType)
	assert.Equal(t, model.Southbound, train.Direction)
	assert.False(t, train.Active)
	assert.Same(t, tp.Station(1), train.CurrentStation)
}

func TestBuildTopologySkipStop(t *testing.T) {
	tp, err := buildTopology(testutil.FiveStationSkipStopConfig(), model.SchemeSkipStop)
	require.NoError(t, err)

	assert.Equal(t, model.StationAB, tp.Station(1).Type)
	assert.Equal(t, model.StationA, tp.Station(2).Type)
	assert.Equal(t, model.StationB, tp.Station(4).Type)

	// Odd train ids run A service, even run B.
	require.Len(t, tp.Trains, 2)
	assert.Equal(t, model.ServiceA, tp.Trains[0].ServiceType)
	assert.Equal(t, model.ServiceB, tp.Trains[1].ServiceType)
}

func TestRosterSizedToMaxPeriod(t *testing.T) {
	cfg := testutil.ThreeStationConfig()
	cfg.ServicePeriods = []model.ServicePeriod{
		{Name: "EARLY", StartHour: 5, RegularTrainCount: 2, SkipStopTrainCount: 2},
		{Name: "PEAK", StartHour: 7, RegularTrainCount: 5, SkipStopTrainCount: 4},
		{Name: "LATE", StartHour: 20, RegularTrainCount: 1, SkipStopTrainCount: 1},
	}

	tp, err := buildTopology(cfg, model.SchemeRegular)
	require.NoError(t, err)
	assert.Len(t, tp.Trains, 5)

	tp, err = buildTopology(cfg, model.SchemeSkipStop)
	require.NoError(t, err)
	assert.Len(t, tp.Trains, 4)
}

func TestShouldStop(t *testing.T) {
	for _, tc := range []struct {
		station model.StationType
		service model.ServiceType
		stop    bool
	}{
		{model.StationAB, model.ServiceA, true},
		{model.StationAB, model.ServiceB, true},
		{model.StationAB, model.ServiceAB, true},
		{model.StationA, model.ServiceA, true},
		{model.StationA, model.ServiceB, false},
		{model.StationA, model.ServiceAB, true},
		{model.StationB, model.ServiceB, true},
		{model.StationB, model.ServiceA, false},
	} {
		st := &Station{Type: tc.station}
		train := &Train{ServiceType: tc.service}
		assert.Equal(t, tc.stop, st.ShouldStop(train),
			"station %s, service %s", tc.station, tc.service)
	}
}

func TestSegmentOccupancy(t *testing.T) {
	seg := &TrackSegment{StartID: 1, EndID: 2}
	a := &Train{ID: 1}
	b := &Train{ID: 2}

	now := testTime(t, "06:00:00")
	require.True(t, seg.Occupy(a, now))
	assert.False(t, seg.Occupy(b, now))
	assert.True(t, seg.Occupy(a, now), "reoccupying by the holder is idempotent")

	err := seg.Release(b, now)
	require.Error(t, err)
	assert.IsType(t, &InvariantViolation{}, err)

	require.NoError(t, seg.Release(a, now))
	assert.Nil(t, seg.OccupiedBy)
	assert.True(t, seg.Occupy(b, now))
}
