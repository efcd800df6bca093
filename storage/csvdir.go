package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/khen08/mrt3sim/model"
)

// CSVStorage writes results as CSV files in a directory, one
// timetable and one demand file per scheme plus a shared metrics
// file. Write-only; there is no read-back.
type CSVStorage struct {
	dir string

	// Metrics rows accumulate across schemes so the metrics file
	// holds the whole comparison.
	metrics map[model.Scheme]model.Metrics
}

func NewCSVStorage(dir string) (*CSVStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &CSVStorage{dir: dir, metrics: map[model.Scheme]model.Metrics{}}, nil
}

func schemeSlug(scheme model.Scheme) string {
	return strings.ToLower(strings.ReplaceAll(string(scheme), "-", "_"))
}

func writeCSVFile(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.Marshal(records, f); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (s *CSVStorage) PersistTimetable(scheme model.Scheme, entries []model.TimetableEntry) error {
	path := filepath.Join(s.dir, fmt.Sprintf("timetable_%s.csv", schemeSlug(scheme)))
	return writeCSVFile(path, &entries)
}

func (s *CSVStorage) PersistDemandResults(scheme model.Scheme, results []model.DemandResult) error {
	path := filepath.Join(s.dir, fmt.Sprintf("demand_%s.csv", schemeSlug(scheme)))
	return writeCSVFile(path, &results)
}

type metricsRow struct {
	Scheme model.Scheme `csv:"scheme"`
	model.Metrics
}

func (s *CSVStorage) PersistMetrics(scheme model.Scheme, m model.Metrics) error {
	s.metrics[scheme] = m

	rows := []metricsRow{}
	for _, sch := range []model.Scheme{model.SchemeRegular, model.SchemeSkipStop} {
		if mm, found := s.metrics[sch]; found {
			rows = append(rows, metricsRow{Scheme: sch, Metrics: mm})
		}
	}

	return writeCSVFile(filepath.Join(s.dir, "metrics.csv"), &rows)
}
