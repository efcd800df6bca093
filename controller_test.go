package mrt3sim

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/testutil"
)

func queuedTimes(q *eventQueue, typ EventType) []time.Time {
	var out []time.Time
	for _, ev := range q.events {
		if ev.Type == typ {
			out = append(out, ev.Time)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

func TestPeriodChangeSchedulesInsertions(t *testing.T) {
	s := newTestSim(t, twoTrainConfig(), model.SchemeRegular)
	at := testTime(t, "04:30:00")

	require.NoError(t, s.handlePeriodChange(&Event{
		Time: at, Type: EventServicePeriodChange,
		Period: &s.cfg.ServicePeriods[0],
	}))

	// Loop 422s, two trains: 4 minute headway.
	assert.Equal(t, 4*time.Minute, s.activeHeadway)

	for _, tr := range s.topology.Trains {
		assert.True(t, tr.Active, "train %d staged for insertion", tr.ID)
	}

	// First at change + max(2min, headway/2); second one stretched
	// headway later (4min * 1.0 * 1.2 on an empty line).
	times := queuedTimes(s.queue, EventTrainInsertion)
	require.Len(t, times, 2)
	assert.Equal(t, testTime(t, "04:32:00"), times[0])
	assert.Equal(t, testTime(t, "04:36:48"), times[1])
}

func TestScheduleInsertionsBatchSlack(t *testing.T) {
	cfg := testutil.ThreeStationConfig()
	cfg.ServicePeriods[0].RegularTrainCount = 4
	s := newTestSim(t, cfg, model.SchemeRegular)
	s.activeHeadway = 2 * time.Minute

	at := testTime(t, "06:30:00")
	s.scheduleInsertions(at, 4)

	// Four wanted: wider 1.5 spread, so steps of 3 minutes, plus an
	// extra half headway after the third.
	times := queuedTimes(s.queue, EventTrainInsertion)
	require.Len(t, times, 4)
	assert.Equal(t, at.Add(2*time.Minute), times[0])
	assert.Equal(t, at.Add(5*time.Minute), times[1])
	assert.Equal(t, at.Add(8*time.Minute), times[2])
	assert.Equal(t, at.Add(12*time.Minute), times[3])
}

func TestScheduleInsertionsClampsToFleet(t *testing.T) {
	s := newTestSim(t, testutil.ThreeStationConfig(), model.SchemeRegular)
	s.activeHeadway = 4 * time.Minute

	s.scheduleInsertions(testTime(t, "06:00:00"), 5)
	assert.Len(t, queuedTimes(s.queue, EventTrainInsertion), 1)
}

func TestPeriodChangeArmsWithdrawal(t *testing.T) {
	s := newTestSim(t, twoTrainConfig(), model.SchemeRegular)
	for _, tr := range s.topology.Trains {
		tr.Active = true
	}

	period := model.ServicePeriod{Name: "ALL DAY", StartHour: 5,
		RegularTrainCount: 1, SkipStopTrainCount: 1}

	// A stale counter is replaced, not accumulated.
	s.trainsToWithdraw = 5
	require.NoError(t, s.handlePeriodChange(&Event{
		Time: testTime(t, "04:30:00"), Type: EventServicePeriodChange,
		Period: &period,
	}))
	assert.Equal(t, 1, s.trainsToWithdraw)
	assert.Empty(t, queuedTimes(s.queue, EventTrainInsertion))
}

func TestWithdrawTrain(t *testing.T) {
	s := newTestSim(t, twoTrainConfig(), model.SchemeRegular)
	station := s.topology.Station(1)
	train := s.topology.Trains[0]
	train.Active = true
	train.Direction = model.Northbound
	station.Platforms[model.Northbound] = train

	at := testTime(t, "10:00:00")
	train.ArrivalTime = at

	arriving := &DemandGroup{ID: 1, OriginID: 3, DestinationID: 1,
		Count: 5, TripType: model.TripDirect, Status: model.StatusInTransitLeg1,
		Direction:               model.Northbound,
		DepartureFromOriginTime: testTime(t, "09:45:00")}
	stranded := &DemandGroup{ID: 2, OriginID: 3, DestinationID: 2,
		Count: 3, TripType: model.TripDirect, Status: model.StatusInTransitLeg1,
		Direction: model.Northbound}
	train.Boarded = []*DemandGroup{arriving, stranded}
	train.PassengerCount = 8

	s.trainsToWithdraw = 1
	s.withdrawTrain(train, station, at)

	assert.False(t, train.Active)
	assert.Equal(t, 0, s.trainsToWithdraw)
	assert.Equal(t, 0, train.PassengerCount)
	assert.Empty(t, train.Boarded)
	assert.Nil(t, station.Platforms[model.Northbound])

	// The group whose destination this is completes normally.
	assert.Equal(t, model.StatusCompleted, arriving.Status)
	assert.Equal(t, at, arriving.CompletionTime)

	// The stranded group is put off onto the platform as-is.
	require.Len(t, station.Waiting, 1)
	assert.Same(t, stranded, station.Waiting[0])
	assert.Equal(t, model.StatusInTransitLeg1, stranded.Status)

	require.Len(t, s.timetable, 1)
	entry := s.timetable[0]
	assert.Equal(t, model.TrainInactive, entry.TrainStatus)
	assert.Equal(t, at, entry.ArrivalTime)
	assert.Equal(t, at.Add(30*time.Second), entry.DepartureTime)
	assert.Equal(t, 8, entry.Alighted)
	assert.Equal(t, 0, entry.Boarded)
	assert.Equal(t, 0, entry.TrainOccupancy)
}
