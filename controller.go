package mrt3sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khen08/mrt3sim/model"
)

const (
	// Lead time between a service_period_change event and the
	// period's nominal start hour.
	periodLeadTime = 30 * time.Minute

	minInsertionDelay = 2 * time.Minute

	// Extra slack after every third consecutive insertion.
	insertionBatchSize = 3
)

// handlePeriodChange adjusts the fleet toward the period's target:
// schedules depot insertions when short, arms deferred withdrawal
// when over.
func (s *Simulation) handlePeriodChange(ev *Event) error {
	period := ev.Period
	s.activePeriod = period
	s.activeHeadway = s.periodHeadways[period.Name]

	target := period.TrainCount(s.scheme)
	active := s.topology.ActiveTrains()

	s.log.WithFields(logrus.Fields{
		"period":  period.Name,
		"target":  target,
		"active":  active,
		"headway": s.activeHeadway,
	}).Info("service period change")

	switch {
	case active < target:
		s.scheduleInsertions(ev.Time, target-active)
	case active > target:
		s.trainsToWithdraw = active - target
	}
	return nil
}

// scheduleInsertions stages up to want inactive trains for depot
// insertion, spacing them out by the congestion-stretched headway.
func (s *Simulation) scheduleInsertions(t time.Time, want int) {
	var free []*Train
	for _, tr := range s.topology.Trains {
		if !tr.Active {
			free = append(free, tr)
		}
	}
	if want > len(free) {
		want = len(free)
	}
	if want == 0 {
		return
	}

	delay := s.activeHeadway / 2
	if delay < minInsertionDelay {
		delay = minInsertionDelay
	}

	spread := 1.2
	if want > 3 {
		spread = 1.5
	}

	next := t.Add(delay)
	for i := 0; i < want; i++ {
		tr := free[i]
		tr.Active = true
		s.schedule(&Event{Time: next, Type: EventTrainInsertion, Train: tr})

		// Congestion moves as insertions queue up, so the
		// multiplier is recomputed per train.
		step := time.Duration(float64(s.activeHeadway) * s.headwayMultiplier() * spread)
		next = next.Add(step)
		if (i+1)%insertionBatchSize == 0 {
			next = next.Add(s.activeHeadway / 2)
		}
	}

	s.log.WithFields(logrus.Fields{
		"count": want,
		"first": t.Add(delay),
	}).Info("scheduled train insertions")
}

// withdrawTrain takes a train out of service at the north terminus.
// Passengers still aboard are put off onto the platform; no further
// events are scheduled, and any already queued die on the active-flag
// check.
func (s *Simulation) withdrawTrain(train *Train, station *Station, t time.Time) {
	train.Active = false
	s.trainsToWithdraw--

	alighted := s.alightPassengers(train, station)
	for _, g := range train.Boarded {
		alighted += g.Count
		train.PassengerCount -= g.Count
		station.Waiting = append(station.Waiting, g)
	}
	train.Boarded = nil

	departure := t.Add(s.topology.Dwell)
	s.recordEntry(train, station, t, departure, 0, alighted, model.TrainInactive)

	if station.Platforms[train.Direction] == train {
		station.Platforms[train.Direction] = nil
	}

	s.log.WithFields(logrus.Fields{
		"train": train.ID,
		"time":  t,
	}).Info("train withdrawn")
}
