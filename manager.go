package mrt3sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/storage"
)

// Manager runs simulations and persists their results. One Manager
// can serve many runs against the same storage.
type Manager struct {
	storage storage.Storage

	Log logrus.FieldLogger
}

func NewManager(s storage.Storage) *Manager {
	return &Manager{
		storage: s,
		Log:     logrus.StandardLogger(),
	}
}

// RunScheme simulates one scheme over the demand table and persists
// timetable, demand results and metrics. Nothing is persisted if the
// run fails.
func (m *Manager) RunScheme(cfg model.Config, scheme model.Scheme, records []model.DemandRecord) (model.Metrics, error) {
	sim, err := NewSimulation(cfg, scheme, records, m.Log)
	if err != nil {
		return model.Metrics{}, fmt.Errorf("initializing %s simulation: %w", scheme, err)
	}

	if err := sim.Run(); err != nil {
		return model.Metrics{}, fmt.Errorf("running %s simulation: %w", scheme, err)
	}

	timetable, results, metrics := sim.Results()

	if err := m.storage.PersistTimetable(scheme, timetable); err != nil {
		return model.Metrics{}, fmt.Errorf("persisting timetable: %w", err)
	}
	if err := m.storage.PersistDemandResults(scheme, results); err != nil {
		return model.Metrics{}, fmt.Errorf("persisting demand results: %w", err)
	}
	if err := m.storage.PersistMetrics(scheme, metrics); err != nil {
		return model.Metrics{}, fmt.Errorf("persisting metrics: %w", err)
	}

	m.Log.WithFields(logrus.Fields{
		"scheme":    scheme,
		"entries":   len(timetable),
		"groups":    len(results),
		"completed": metrics.CompletedGroups,
		"duration":  metrics.RunDurationSeconds,
	}).Info("scheme run complete")

	return metrics, nil
}

// Outcome of one scheme within a comparison run.
type SchemeResult struct {
	Metrics model.Metrics
	Err     error
}

// RunAll runs the regular and skip-stop schemes over the same demand
// table. A failure in one scheme does not stop the other.
func (m *Manager) RunAll(cfg model.Config, records []model.DemandRecord) map[model.Scheme]SchemeResult {
	out := map[model.Scheme]SchemeResult{}
	for _, scheme := range []model.Scheme{model.SchemeRegular, model.SchemeSkipStop} {
		metrics, err := m.RunScheme(cfg, scheme, records)
		if err != nil {
			m.Log.WithField("scheme", scheme).WithError(err).Error("scheme run failed")
		}
		out[scheme] = SchemeResult{Metrics: metrics, Err: err}
	}
	return out
}
