package storage

import (
	"github.com/khen08/mrt3sim/model"
)

// Storage is the sink for simulation output. One scheme run persists
// its timetable, demand results and metrics through it; persisting
// the same scheme again replaces the previous run's rows.
type Storage interface {
	PersistTimetable(scheme model.Scheme, entries []model.TimetableEntry) error
	PersistDemandResults(scheme model.Scheme, results []model.DemandResult) error
	PersistMetrics(scheme model.Scheme, metrics model.Metrics) error
}

// Reader is the optional read-back side, offered by the backends that
// retain rows (memory, sqlite, postgres).
type Reader interface {
	Timetable(scheme model.Scheme) ([]model.TimetableEntry, error)
	DemandResults(scheme model.Scheme) ([]model.DemandResult, error)
	Metrics(scheme model.Scheme) (model.Metrics, error)
}
