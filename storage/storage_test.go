package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khen08/mrt3sim/model"
)

func sampleTimetable(base time.Time) []model.TimetableEntry {
	return []model.TimetableEntry{
		{
			TrainID: 1, ServiceType: model.ServiceAB, StationID: 1,
			Direction: model.Southbound, ArrivalTime: base,
			DepartureTime: base.Add(30 * time.Second),
			Boarded:       12, TrainOccupancy: 12,
			TrainStatus: model.TrainActive,
		},
		{
			TrainID: 1, ServiceType: model.ServiceAB, StationID: 2,
			Direction: model.Southbound, ArrivalTime: base.Add(2 * time.Minute),
			DepartureTime:     base.Add(2*time.Minute + 30*time.Second),
			TravelTimeSeconds: 90, Alighted: 12,
			TrainStatus: model.TrainActive,
		},
	}
}

func sampleResults(base time.Time) []model.DemandResult {
	return []model.DemandResult{
		{
			GroupID: 1, OriginID: 1, DestinationID: 2,
			TripType: model.TripDirect, PassengerCount: 12,
			Status:          model.StatusCompleted,
			ArrivalAtOrigin: base, DepartureFromOrigin: base.Add(30 * time.Second),
			CompletionTime:  base.Add(2 * time.Minute),
			WaitTimeSeconds: 30, TravelTimeSeconds: 90,
		},
		{
			GroupID: 2, OriginID: 2, DestinationID: 4,
			TransferStationID: 3, TripType: model.TripTransfer,
			PassengerCount: 5, Status: model.StatusWaitingAtOrigin,
			ArrivalAtOrigin: base.Add(time.Hour),
		},
	}
}

var sampleMetrics = model.Metrics{
	PassengersBoarded:  17,
	TotalWaitSeconds:   30,
	TotalTravelSeconds: 90,
	CompletedGroups:    1,
	RunDurationSeconds: 0.25,
}

// Backends that retain rows must return what was persisted, replace on
// re-persist, and keep schemes separate.
func testReadBack(t *testing.T, s Storage, r Reader) {
	base := time.Date(2023, time.April, 12, 7, 0, 0, 0, time.UTC)
	timetable := sampleTimetable(base)
	results := sampleResults(base)

	require.NoError(t, s.PersistTimetable(model.SchemeRegular, timetable))
	require.NoError(t, s.PersistDemandResults(model.SchemeRegular, results))
	require.NoError(t, s.PersistMetrics(model.SchemeRegular, sampleMetrics))

	gotTimetable, err := r.Timetable(model.SchemeRegular)
	require.NoError(t, err)
	require.Len(t, gotTimetable, len(timetable))
	for i, e := range gotTimetable {
		assert.Equal(t, timetable[i].TrainID, e.TrainID)
		assert.Equal(t, timetable[i].StationID, e.StationID)
		assert.Equal(t, timetable[i].Direction, e.Direction)
		assert.Equal(t, timetable[i].Boarded, e.Boarded)
		assert.Equal(t, timetable[i].TrainStatus, e.TrainStatus)
		// Drivers may change the location; compare instants.
		assert.True(t, timetable[i].ArrivalTime.Equal(e.ArrivalTime))
		assert.True(t, timetable[i].DepartureTime.Equal(e.DepartureTime))
	}

	gotResults, err := r.DemandResults(model.SchemeRegular)
	require.NoError(t, err)
	require.Len(t, gotResults, len(results))
	assert.Equal(t, results[0].GroupID, gotResults[0].GroupID)
	assert.Equal(t, results[0].Status, gotResults[0].Status)
	assert.Equal(t, results[1].TransferStationID, gotResults[1].TransferStationID)
	assert.True(t, results[0].CompletionTime.Equal(gotResults[0].CompletionTime))

	gotMetrics, err := r.Metrics(model.SchemeRegular)
	require.NoError(t, err)
	assert.Equal(t, sampleMetrics, gotMetrics)

	// Re-persisting a scheme replaces its rows.
	require.NoError(t, s.PersistTimetable(model.SchemeRegular, timetable[:1]))
	gotTimetable, err = r.Timetable(model.SchemeRegular)
	require.NoError(t, err)
	assert.Len(t, gotTimetable, 1)

	// The other scheme stays empty.
	other, err := r.Timetable(model.SchemeSkipStop)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = r.Metrics(model.SchemeSkipStop)
	assert.Error(t, err)
}

func TestMemoryStorage(t *testing.T) {
	s := NewMemoryStorage()
	testReadBack(t, s, s)
}

func TestMemoryStorageCopiesInput(t *testing.T) {
	s := NewMemoryStorage()
	base := time.Date(2023, time.April, 12, 7, 0, 0, 0, time.UTC)
	timetable := sampleTimetable(base)

	require.NoError(t, s.PersistTimetable(model.SchemeRegular, timetable))
	timetable[0].TrainID = 99

	got, err := s.Timetable(model.SchemeRegular)
	require.NoError(t, err)
	assert.Equal(t, 1, got[0].TrainID)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage()
	require.NoError(t, err)
	defer s.Close()

	testReadBack(t, s, s)
}

func TestSQLiteStorageFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	s, err := NewSQLiteStorage(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.PersistMetrics(model.SchemeSkipStop, sampleMetrics))

	got, err := s.Metrics(model.SchemeSkipStop)
	require.NoError(t, err)
	assert.Equal(t, sampleMetrics, got)

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestPostgresStorage(t *testing.T) {
	connStr := os.Getenv("MRT3SIM_TEST_POSTGRES")
	if connStr == "" {
		t.Skip("MRT3SIM_TEST_POSTGRES not set")
	}

	s, err := NewPSQLStorage(connStr, true)
	require.NoError(t, err)
	defer s.Close()

	testReadBack(t, s, s)
}

func TestCSVStorage(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVStorage(dir)
	require.NoError(t, err)

	base := time.Date(2023, time.April, 12, 7, 0, 0, 0, time.UTC)
	require.NoError(t, s.PersistTimetable(model.SchemeSkipStop, sampleTimetable(base)))
	require.NoError(t, s.PersistDemandResults(model.SchemeSkipStop, sampleResults(base)))
	require.NoError(t, s.PersistMetrics(model.SchemeRegular, sampleMetrics))
	require.NoError(t, s.PersistMetrics(model.SchemeSkipStop, sampleMetrics))

	timetable, err := os.ReadFile(filepath.Join(dir, "timetable_skip_stop.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(timetable), "train_id")
	assert.Equal(t, 3, strings.Count(string(timetable), "\n"), "header plus two rows")

	_, err = os.Stat(filepath.Join(dir, "demand_skip_stop.csv"))
	assert.NoError(t, err)

	// The metrics file accumulates both schemes.
	metrics, err := os.ReadFile(filepath.Join(dir, "metrics.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), string(model.SchemeRegular))
	assert.Contains(t, string(metrics), string(model.SchemeSkipStop))
}
