package mrt3sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/testutil"
)

func testSpec() *TrainSpec {
	// 60 km/h cruise, 20 km/h passthrough, 1 m/s^2 both ways.
	return &TrainSpec{
		Capacity:         100,
		CruisingSpeed:    kmhToMS(60),
		PassthroughSpeed: kmhToMS(20),
		Acceleration:     1.0,
		Deceleration:     1.0,
	}
}

func TestTraversalTime(t *testing.T) {
	spec := testSpec()

	for _, tc := range []struct {
		name  string
		v0    float64
		stop  bool
		secs  int
		speed float64
	}{
		// From rest: accelerate 16.67s over 138.9m, cruise the
		// remaining 861.1m in 51.67s.
		{"stop from rest", 0, true, 68, 0},

		// From cruise: 16.67s braking distance on each end.
		{"stop from cruise", kmhToMS(60), true, 76, 0},

		// Passthrough from cruise: brake 11.1s, 23.4s through the
		// 130m zone, 11.1s back up, cruise the rest.
		{"passthrough from cruise", kmhToMS(60), false, 101, kmhToMS(20)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			secs, speed := traversalTime(spec, tc.v0, 1000, tc.stop, model.DefaultZoneLengthMetres)
			assert.Equal(t, tc.secs, secs)
			assert.InDelta(t, tc.speed, speed, 0.001)
		})
	}
}

func TestLoopTime(t *testing.T) {
	tp, err := buildTopology(testutil.ThreeStationConfig(), model.SchemeRegular)
	require.NoError(t, err)

	// Out: 68s + 30s dwell + 68s. Turnaround 60s. Back: same 166s.
	// Final dwell 30s.
	loop, err := tp.LoopTime(model.ServiceAB)
	require.NoError(t, err)
	assert.Equal(t, 422*time.Second, loop)
}

func TestLoopTimeSkipStop(t *testing.T) {
	tp, err := buildTopology(testutil.FiveStationSkipStopConfig(), model.SchemeSkipStop)
	require.NoError(t, err)

	// An A train dwells at 1, 2, 3, 5 and passes through 4.
	loop, err := tp.LoopTime(model.ServiceA)
	require.NoError(t, err)

	regular, err := tp.LoopTime(model.ServiceAB)
	require.NoError(t, err)
	assert.Less(t, loop, regular, "skipping a station must shorten the loop")
}

func TestRoundHalfToEven(t *testing.T) {
	assert.Equal(t, 4, roundHalfToEven(3.5))
	assert.Equal(t, 2, roundHalfToEven(2.5))
	assert.Equal(t, 3, roundHalfToEven(3.4999))
	assert.Equal(t, 4, roundHalfToEven(3.5001))
	assert.Equal(t, 7, roundHalfToEven(7.0333))
}

func TestHeadwayMinutes(t *testing.T) {
	assert.Equal(t, 7, HeadwayMinutes(422*time.Second, 1))
	assert.Equal(t, 4, HeadwayMinutes(422*time.Second, 2))
	assert.Equal(t, 2, HeadwayMinutes(5*time.Minute, 2))
	assert.Equal(t, 0, HeadwayMinutes(422*time.Second, 0))
}
