package storage

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/khen08/mrt3sim/model"
)

type PSQLStorage struct {
	db *sql.DB
}

// Creates a new Postgres Storage using the provided connection
// string.
//
// If clearDB is true, all simulation tables are dropped on startup.
// You probably only want this for testing.
func NewPSQLStorage(connStr string, clearDB bool) (*PSQLStorage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if clearDB {
		_, err = db.Exec(`DROP TABLE IF EXISTS timetable, demand_result, metrics`)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("clearing database: %w", err)
		}
	}

	_, err = db.Exec(`
CREATE TABLE IF NOT EXISTS timetable (
    scheme TEXT NOT NULL,
    train_id INTEGER NOT NULL,
    service_type TEXT NOT NULL,
    station_id INTEGER NOT NULL,
    direction TEXT NOT NULL,
    arrival_time TIMESTAMPTZ NOT NULL,
    departure_time TIMESTAMPTZ NOT NULL,
    travel_time_seconds INTEGER NOT NULL,
    passengers_boarded INTEGER NOT NULL,
    passengers_alighted INTEGER NOT NULL,
    station_waiting INTEGER NOT NULL,
    train_occupancy INTEGER NOT NULL,
    train_status TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS demand_result (
    scheme TEXT NOT NULL,
    group_id INTEGER NOT NULL,
    origin_id INTEGER NOT NULL,
    destination_id INTEGER NOT NULL,
    transfer_station_id INTEGER NOT NULL,
    trip_type TEXT NOT NULL,
    passenger_count INTEGER NOT NULL,
    status TEXT NOT NULL,
    arrival_time_at_origin TIMESTAMPTZ NOT NULL,
    departure_from_origin TIMESTAMPTZ,
    completion_time TIMESTAMPTZ,
    wait_time_seconds INTEGER NOT NULL,
    travel_time_seconds INTEGER NOT NULL,
PRIMARY KEY (scheme, group_id)
);

CREATE TABLE IF NOT EXISTS metrics (
    scheme TEXT NOT NULL,
    passengers_boarded INTEGER NOT NULL,
    total_wait_seconds BIGINT NOT NULL,
    total_travel_seconds BIGINT NOT NULL,
    completed_groups INTEGER NOT NULL,
    run_duration_seconds DOUBLE PRECISION NOT NULL,
PRIMARY KEY (scheme)
);`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating tables: %w", err)
	}

	return &PSQLStorage{db: db}, nil
}

func (s *PSQLStorage) Close() error {
	return s.db.Close()
}

func (s *PSQLStorage) PersistTimetable(scheme model.Scheme, entries []model.TimetableEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM timetable WHERE scheme = $1", string(scheme)); err != nil {
		return fmt.Errorf("clearing timetable: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO timetable (
    scheme, train_id, service_type, station_id, direction,
    arrival_time, departure_time, travel_time_seconds,
    passengers_boarded, passengers_alighted, station_waiting,
    train_occupancy, train_status
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		_, err := stmt.Exec(
			string(scheme), e.TrainID, string(e.ServiceType), e.StationID,
			string(e.Direction), e.ArrivalTime, e.DepartureTime,
			e.TravelTimeSeconds, e.Boarded, e.Alighted, e.StationWaiting,
			e.TrainOccupancy, string(e.TrainStatus),
		)
		if err != nil {
			return fmt.Errorf("inserting timetable entry: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PSQLStorage) PersistDemandResults(scheme model.Scheme, results []model.DemandResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM demand_result WHERE scheme = $1", string(scheme)); err != nil {
		return fmt.Errorf("clearing demand results: %w", err)
	}

	stmt, err := tx.Prepare(`
INSERT INTO demand_result (
    scheme, group_id, origin_id, destination_id, transfer_station_id,
    trip_type, passenger_count, status, arrival_time_at_origin,
    departure_from_origin, completion_time, wait_time_seconds,
    travel_time_seconds
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		_, err := stmt.Exec(
			string(scheme), r.GroupID, r.OriginID, r.DestinationID,
			r.TransferStationID, string(r.TripType), r.PassengerCount,
			string(r.Status), r.ArrivalAtOrigin, r.DepartureFromOrigin,
			r.CompletionTime, r.WaitTimeSeconds, r.TravelTimeSeconds,
		)
		if err != nil {
			return fmt.Errorf("inserting demand result: %w", err)
		}
	}

	return tx.Commit()
}

func (s *PSQLStorage) PersistMetrics(scheme model.Scheme, m model.Metrics) error {
	_, err := s.db.Exec(`
INSERT INTO metrics (
    scheme, passengers_boarded, total_wait_seconds,
    total_travel_seconds, completed_groups, run_duration_seconds
) VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (scheme) DO UPDATE SET
    passengers_boarded = excluded.passengers_boarded,
    total_wait_seconds = excluded.total_wait_seconds,
    total_travel_seconds = excluded.total_travel_seconds,
    completed_groups = excluded.completed_groups,
    run_duration_seconds = excluded.run_duration_seconds`,
		string(scheme), m.PassengersBoarded, m.TotalWaitSeconds,
		m.TotalTravelSeconds, m.CompletedGroups, m.RunDurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}

func (s *PSQLStorage) Timetable(scheme model.Scheme) ([]model.TimetableEntry, error) {
	rows, err := s.db.Query(`
SELECT
    train_id, service_type, station_id, direction, arrival_time,
    departure_time, travel_time_seconds, passengers_boarded,
    passengers_alighted, station_waiting, train_occupancy, train_status
FROM timetable
WHERE scheme = $1
ORDER BY departure_time, train_id`, string(scheme))
	if err != nil {
		return nil, fmt.Errorf("querying timetable: %w", err)
	}
	defer rows.Close()

	var entries []model.TimetableEntry
	for rows.Next() {
		var e model.TimetableEntry
		err := rows.Scan(
			&e.TrainID, &e.ServiceType, &e.StationID, &e.Direction,
			&e.ArrivalTime, &e.DepartureTime, &e.TravelTimeSeconds,
			&e.Boarded, &e.Alighted, &e.StationWaiting,
			&e.TrainOccupancy, &e.TrainStatus,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning timetable entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *PSQLStorage) DemandResults(scheme model.Scheme) ([]model.DemandResult, error) {
	rows, err := s.db.Query(`
SELECT
    group_id, origin_id, destination_id, transfer_station_id,
    trip_type, passenger_count, status, arrival_time_at_origin,
    departure_from_origin, completion_time, wait_time_seconds,
    travel_time_seconds
FROM demand_result
WHERE scheme = $1
ORDER BY group_id`, string(scheme))
	if err != nil {
		return nil, fmt.Errorf("querying demand results: %w", err)
	}
	defer rows.Close()

	var results []model.DemandResult
	for rows.Next() {
		var r model.DemandResult
		err := rows.Scan(
			&r.GroupID, &r.OriginID, &r.DestinationID,
			&r.TransferStationID, &r.TripType, &r.PassengerCount,
			&r.Status, &r.ArrivalAtOrigin, &r.DepartureFromOrigin,
			&r.CompletionTime, &r.WaitTimeSeconds, &r.TravelTimeSeconds,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning demand result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *PSQLStorage) Metrics(scheme model.Scheme) (model.Metrics, error) {
	var m model.Metrics
	err := s.db.QueryRow(`
SELECT
    passengers_boarded, total_wait_seconds, total_travel_seconds,
    completed_groups, run_duration_seconds
FROM metrics
WHERE scheme = $1`, string(scheme)).Scan(
		&m.PassengersBoarded, &m.TotalWaitSeconds, &m.TotalTravelSeconds,
		&m.CompletedGroups, &m.RunDurationSeconds,
	)
	if err == sql.ErrNoRows {
		return model.Metrics{}, fmt.Errorf("no metrics for scheme %s", scheme)
	}
	if err != nil {
		return model.Metrics{}, fmt.Errorf("querying metrics: %w", err)
	}
	return m, nil
}
