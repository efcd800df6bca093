package storage

import (
	"fmt"

	"github.com/khen08/mrt3sim/model"
)

// In memory implementation of Storage. Used in tests and for runs
// where the caller only wants the aggregate report.
type MemoryStorage struct {
	Timetables map[model.Scheme][]model.TimetableEntry
	Results    map[model.Scheme][]model.DemandResult
	Totals     map[model.Scheme]model.Metrics
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		Timetables: map[model.Scheme][]model.TimetableEntry{},
		Results:    map[model.Scheme][]model.DemandResult{},
		Totals:     map[model.Scheme]model.Metrics{},
	}
}

func (s *MemoryStorage) PersistTimetable(scheme model.Scheme, entries []model.TimetableEntry) error {
	s.Timetables[scheme] = append([]model.TimetableEntry{}, entries...)
	return nil
}

func (s *MemoryStorage) PersistDemandResults(scheme model.Scheme, results []model.DemandResult) error {
	s.Results[scheme] = append([]model.DemandResult{}, results...)
	return nil
}

func (s *MemoryStorage) PersistMetrics(scheme model.Scheme, metrics model.Metrics) error {
	s.Totals[scheme] = metrics
	return nil
}

func (s *MemoryStorage) Timetable(scheme model.Scheme) ([]model.TimetableEntry, error) {
	return s.Timetables[scheme], nil
}

func (s *MemoryStorage) DemandResults(scheme model.Scheme) ([]model.DemandResult, error) {
	return s.Results[scheme], nil
}

func (s *MemoryStorage) Metrics(scheme model.Scheme) (model.Metrics, error) {
	m, found := s.Totals[scheme]
	if !found {
		return model.Metrics{}, fmt.Errorf("no metrics for scheme %s", scheme)
	}
	return m, nil
}
