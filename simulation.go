package mrt3sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khen08/mrt3sim/model"
	"github.com/khen08/mrt3sim/parse"
)

// Service day boundaries.
const (
	serviceStartHour = 5
	serviceEndHour   = 22
)

// Simulation runs one scheme over one service day. Build it with
// NewSimulation, drive it with Run, then collect Results. A
// Simulation is single use; run the other scheme on a fresh instance.
type Simulation struct {
	scheme   model.Scheme
	cfg      model.Config
	topology *Topology
	queue    *eventQueue
	log      logrus.FieldLogger

	clock time.Time
	start time.Time
	end   time.Time

	loopTime         time.Duration
	activePeriod     *model.ServicePeriod
	activeHeadway    time.Duration
	periodHeadways   map[string]time.Duration
	trainsToWithdraw int

	groups    []*DemandGroup
	timetable []model.TimetableEntry
	metrics   model.Metrics
}

// representativeService picks the train type used for the loop-time
// walk: AB for regular service, A for skip-stop (A and B loops are
// symmetric under an alternating pattern).
func representativeService(scheme model.Scheme) model.ServiceType {
	if scheme == model.SchemeSkipStop {
		return model.ServiceA
	}
	return model.ServiceAB
}

// simulationDay is the date the demand table implies, or an arbitrary
// fixed day for demand-free runs so results stay deterministic.
func simulationDay(records []model.DemandRecord) time.Time {
	if len(records) > 0 {
		t := records[0].Time
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	return time.Date(2023, time.April, 12, 0, 0, 0, 0, time.UTC)
}

// NewSimulation validates the configuration, builds the topology,
// derives per-period headways from the loop time, loads demand groups
// and schedules the service period events. No train moves until Run.
func NewSimulation(cfg model.Config, scheme model.Scheme, records []model.DemandRecord, log logrus.FieldLogger) (*Simulation, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("scheme", scheme)

	if err := parse.ValidateConfig(cfg); err != nil {
		return nil, err
	}

	tp, err := buildTopology(cfg, scheme)
	if err != nil {
		return nil, err
	}

	loop, err := tp.LoopTime(representativeService(scheme))
	if err != nil {
		return nil, fmt.Errorf("computing loop time: %w", err)
	}

	s := &Simulation{
		scheme:         scheme,
		cfg:            cfg,
		topology:       tp,
		queue:          newEventQueue(),
		log:            log,
		loopTime:       loop,
		periodHeadways: map[string]time.Duration{},
	}

	for _, p := range cfg.ServicePeriods {
		minutes := HeadwayMinutes(loop, p.TrainCount(scheme))
		if minutes < 1 {
			minutes = 1
		}
		s.periodHeadways[p.Name] = time.Duration(minutes) * time.Minute
	}
	// Until the first period change fires, fall back to the first
	// period's headway.
	s.activeHeadway = s.periodHeadways[cfg.ServicePeriods[0].Name]

	day := simulationDay(records)
	s.start = day.Add(serviceStartHour * time.Hour)
	s.end = day.Add(serviceEndHour * time.Hour)
	// Period changes fire before the service start, so the clock
	// begins at midnight.
	s.clock = day

	s.groups = buildDemandGroups(tp, scheme, records, log)

	for i := range cfg.ServicePeriods {
		p := &cfg.ServicePeriods[i]
		at := day.Add(time.Duration(p.StartHour) * time.Hour).Add(-periodLeadTime)
		s.schedule(&Event{Time: at, Type: EventServicePeriodChange, Period: p})
	}

	return s, nil
}

func (s *Simulation) schedule(ev *Event) {
	s.queue.schedule(ev)
}

// Run drains the event queue until it empties or simulated time
// reaches the end of the service day. Returns the first fatal error;
// results from a failed run must be discarded.
func (s *Simulation) Run() error {
	began := time.Now()
	defer func() {
		s.metrics.RunDurationSeconds = time.Since(began).Seconds()
	}()

	for {
		ev := s.queue.popNext()
		if ev == nil {
			return nil
		}
		if ev.Time.Before(s.clock) {
			return invariantf("event %s at %s precedes clock %s",
				ev.Type, ev.Time, s.clock)
		}
		s.clock = ev.Time
		if !ev.Time.Before(s.end) {
			return nil
		}

		var err error
		switch ev.Type {
		case EventServicePeriodChange:
			err = s.handlePeriodChange(ev)
		case EventTrainDeparture:
			err = s.handleDeparture(ev)
		case EventSegmentExit:
			err = s.handleSegmentExit(ev)
		case EventTrainArrival:
			err = s.handleArrival(ev)
		case EventTurnaround:
			err = s.handleTurnaround(ev)
		case EventSegmentEnter:
			err = s.handleSegmentEnter(ev)
		case EventTrainInsertion:
			err = s.handleInsertion(ev)
		default:
			err = invariantf("unknown event type %d", ev.Type)
		}
		if err != nil {
			return err
		}
	}
}

// Results returns the timetable, the final state of every demand
// group, and the run metrics.
func (s *Simulation) Results() ([]model.TimetableEntry, []model.DemandResult, model.Metrics) {
	results := make([]model.DemandResult, 0, len(s.groups))
	for _, g := range s.groups {
		results = append(results, g.result())
	}
	return s.timetable, results, s.metrics
}

// Headway returns the derived headway for a named service period.
func (s *Simulation) Headway(period string) time.Duration {
	return s.periodHeadways[period]
}

// LoopTime returns the representative round-trip time the headways
// derive from.
func (s *Simulation) LoopTime() time.Duration {
	return s.loopTime
}
