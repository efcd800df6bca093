package mrt3sim

import (
	"time"

	"github.com/khen08/mrt3sim/model"
)

const (
	// Base gap enforced behind a conflicting movement, scaled by
	// the congestion buffer factor.
	departureBufferBase = 5 * time.Second

	// Step applied while a departure collides with another pending
	// departure at the same station and instant.
	departureBumpStep = 3 * time.Second

	// Fallback fraction of the active headway used when a held
	// resource has no known clearance event.
	headwayRetryFraction = 0.5

	// Fixed traversal of the depot connector during insertion.
	depotTraversalTime = 60 * time.Second
)

// congestionFactor is the share of the active fleet currently inside
// track segments. 0 on an empty line, approaching 1 when every active
// train is between stations.
func (s *Simulation) congestionFactor() float64 {
	active := s.topology.ActiveTrains()
	if active < 1 {
		active = 1
	}
	return float64(s.topology.TrainsInSegments()) / float64(active)
}

// headwayMultiplier stretches reschedule intervals as the line fills
// up. An extra penalty applies when the north terminus has a queue of
// inbound trains, since that is where insertions and withdrawals
// contend. Capped at 1.5.
func (s *Simulation) headwayMultiplier() float64 {
	c := s.congestionFactor()

	m := 1.0
	switch {
	case c > 0.7:
		m = 1.3
	case c > 0.5:
		m = 1.2
	case c > 0.3:
		m = 1.1
	}

	if s.queue.pendingArrivals(s.topology.Station(1), model.Northbound) > 2 {
		m += 0.2
	}
	if m > 1.5 {
		m = 1.5
	}
	return m
}

// bufferFactor scales the departure buffer by the same congestion
// bands.
func (s *Simulation) bufferFactor() float64 {
	c := s.congestionFactor()
	switch {
	case c > 0.5:
		return 2.0
	case c > 0.3:
		return 1.5
	}
	return 1.0
}

func (s *Simulation) departureBuffer() time.Duration {
	return time.Duration(float64(departureBufferBase) * s.bufferFactor())
}

// scaledHeadway is the active headway stretched by the given factor.
func (s *Simulation) scaledHeadway(factor float64) time.Duration {
	return time.Duration(float64(s.activeHeadway) * factor)
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// resolveDeparture computes when a blocked departure should retry.
// Returns false if the computed time does not advance past the
// current event, which signals an arbitration loop: the caller drops
// the event instead of rescheduling it forever.
func (s *Simulation) resolveDeparture(ev *Event, seg *TrackSegment, next *Station) (time.Time, bool) {
	t := ev.Time
	buffer := s.departureBuffer()
	fallback := t.Add(s.scaledHeadway(headwayRetryFraction * s.headwayMultiplier()))

	cand := t

	if seg.OccupiedBy != nil && seg.OccupiedBy != ev.Train {
		if exit, ok := s.queue.nextSegmentExit(seg); ok {
			cand = maxTime(cand, exit.Add(buffer))
		} else {
			cand = maxTime(cand, fallback)
		}
	}

	if occ := next.Platforms[ev.Train.Direction]; occ != nil && occ != ev.Train {
		if dep, ok := s.queue.nextDepartureOf(occ); ok {
			cand = maxTime(cand, dep.Add(buffer))
		} else {
			cand = maxTime(cand, fallback)
		}
	}

	// Never two departures from the same station at the same
	// instant; nudge until clear, but never past the dwell cap.
	deadline := ev.Train.ArrivalTime.Add(3 * s.topology.Dwell)
	for s.queue.departureCollision(ev.Station, cand, ev.Train) && cand.Before(deadline) {
		cand = cand.Add(departureBumpStep)
	}
	if cand.After(deadline) {
		cand = deadline
	}

	if !cand.After(t) {
		return t, false
	}
	return cand, true
}

// resolveInsertion computes when a blocked depot insertion should
// retry, with the same loop detection as resolveDeparture.
func (s *Simulation) resolveInsertion(ev *Event, depot *TrackSegment) (time.Time, bool) {
	t := ev.Time

	// A simultaneous entry into the depot connector wins outright;
	// back off a full headway.
	if s.queue.segmentEnterAt(depot, t) {
		return t.Add(s.activeHeadway), true
	}

	buffer := s.departureBuffer()
	fallback := t.Add(s.scaledHeadway(s.headwayMultiplier()))
	cand := t

	terminus := s.topology.Station(1)
	if occ := terminus.Platforms[model.Northbound]; occ != nil {
		if dep, ok := s.queue.nextDepartureOf(occ); ok {
			cand = maxTime(cand, dep.Add(buffer))
		} else {
			cand = maxTime(cand, fallback)
		}
	}

	if depot.OccupiedBy != nil {
		if exit, ok := s.queue.nextSegmentExit(depot); ok {
			cand = maxTime(cand, exit.Add(buffer))
		} else {
			cand = maxTime(cand, fallback)
		}
	}

	if !cand.After(t) {
		return t, false
	}
	return cand, true
}
