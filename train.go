package mrt3sim

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khen08/mrt3sim/model"
)

// recordEntry appends one timetable row for a train's visit to a
// station and resets the train's accumulated journey time.
func (s *Simulation) recordEntry(train *Train, station *Station, arrival, departure time.Time, boarded, alighted int, status model.TrainStatus) {
	s.timetable = append(s.timetable, model.TimetableEntry{
		TrainID:           train.ID,
		ServiceType:       train.ServiceType,
		StationID:         station.ID,
		Direction:         train.Direction,
		ArrivalTime:       arrival,
		DepartureTime:     departure,
		TravelTimeSeconds: train.JourneySeconds,
		Boarded:           boarded,
		Alighted:          alighted,
		StationWaiting:    station.WaitingPassengers(),
		TrainOccupancy:    train.PassengerCount,
		TrainStatus:       status,
	})
	train.JourneySeconds = 0
}

func (s *Simulation) handleArrival(ev *Event) error {
	train, station, t := ev.Train, ev.Station, ev.Time
	if !train.Active {
		return nil
	}

	train.CurrentStation = station
	train.ArrivalTime = t

	if occ := station.Platforms[train.Direction]; occ != nil && occ != train {
		return invariantf("train %d arrived at station %d %s platform occupied by train %d",
			train.ID, station.ID, train.Direction, occ.ID)
	}
	station.Platforms[train.Direction] = train

	// Surplus trains leave service on northbound arrival at the
	// north terminus.
	if s.trainsToWithdraw > 0 && station.ID == 1 && train.Direction == model.Northbound {
		s.withdrawTrain(train, station, t)
		return nil
	}

	if station.IsTerminus {
		s.schedule(&Event{
			Time: t.Add(s.topology.Dwell), Type: EventTurnaround,
			Train: train, Station: station,
		})
		return nil
	}

	dwell := s.topology.Dwell
	if !station.ShouldStop(train) {
		dwell = 0
	}
	s.schedule(&Event{
		Time: t.Add(dwell), Type: EventTrainDeparture,
		Train: train, Station: station,
	})
	return nil
}

func (s *Simulation) handleDeparture(ev *Event) error {
	train, station, t := ev.Train, ev.Station, ev.Time
	if !train.Active {
		return nil
	}

	seg := station.Tracks[train.Direction]
	if seg == nil {
		return invariantf("train %d departing station %d has no %s segment",
			train.ID, station.ID, train.Direction)
	}
	next := s.topology.Station(seg.EndID)

	segBlocked := seg.OccupiedBy != nil && seg.OccupiedBy != train
	platformBlocked := next.Platforms[train.Direction] != nil && next.Platforms[train.Direction] != train

	if segBlocked || platformBlocked {
		retry, ok := s.resolveDeparture(ev, seg, next)
		if !ok {
			s.log.WithFields(logrus.Fields{
				"train":   train.ID,
				"station": station.ID,
				"time":    t,
			}).Warn("arbitration loop, dropping departure event")
			return nil
		}
		s.schedule(&Event{
			Time: retry, Type: EventTrainDeparture,
			Train: train, Station: station,
		})
		return nil
	}

	boarded, alighted := 0, 0
	if station.ShouldStop(train) {
		boarded, alighted = s.exchangePassengers(train, station, t)
	}

	s.recordEntry(train, station, train.ArrivalTime, t, boarded, alighted, model.TrainActive)

	if station.Platforms[train.Direction] == train {
		station.Platforms[train.Direction] = nil
	}
	train.LastDepartureTime = t

	s.schedule(&Event{
		Time: t, Type: EventSegmentEnter,
		Train: train, Station: next, Segment: seg,
	})
	return nil
}

func (s *Simulation) handleSegmentEnter(ev *Event) error {
	train, seg, t := ev.Train, ev.Segment, ev.Time
	if !train.Active {
		return nil
	}

	if !seg.Occupy(train, t) {
		var retry time.Time
		if exit, ok := s.queue.nextSegmentExit(seg); ok {
			retry = exit.Add(s.departureBuffer())
		} else {
			retry = t.Add(s.scaledHeadway(s.headwayMultiplier()))
		}
		if !retry.After(t) {
			s.log.WithFields(logrus.Fields{
				"train": train.ID,
				"from":  seg.StartID,
				"to":    seg.EndID,
				"time":  t,
			}).Warn("arbitration loop, dropping segment enter event")
			return nil
		}
		s.schedule(&Event{
			Time: retry, Type: EventSegmentEnter,
			Train: train, Station: ev.Station, Segment: seg,
		})
		return nil
	}

	train.CurrentStation = nil

	next := ev.Station
	stop := next.IsTerminus || next.ShouldStop(train)
	secs, v := traversalTime(train.Spec, train.CurrentSpeed, seg.Length, stop, s.topology.ZoneLength)
	train.CurrentSpeed = v
	train.JourneySeconds += secs
	seg.NextAvailable = t.Add(time.Duration(secs) * time.Second)

	s.schedule(&Event{
		Time: seg.NextAvailable, Type: EventSegmentExit,
		Train: train, Station: next, Segment: seg,
	})
	return nil
}

func (s *Simulation) handleSegmentExit(ev *Event) error {
	train, seg, t := ev.Train, ev.Segment, ev.Time
	if !train.Active {
		// Free the track even for a train withdrawn mid-flight.
		if seg.OccupiedBy == train {
			seg.OccupiedBy = nil
			seg.LastExitTime = t
		}
		return nil
	}

	if err := seg.Release(train, t); err != nil {
		return err
	}

	s.schedule(&Event{
		Time: t, Type: EventTrainArrival,
		Train: train, Station: ev.Station,
	})
	return nil
}

func (s *Simulation) handleTurnaround(ev *Event) error {
	train, station, t := ev.Train, ev.Station, ev.Time
	if !train.Active {
		return nil
	}

	boarded, alighted := s.exchangePassengers(train, station, t)
	s.recordEntry(train, station, train.ArrivalTime, t, boarded, alighted, model.TrainActive)

	if station.Platforms[train.Direction] == train {
		station.Platforms[train.Direction] = nil
	}
	train.Direction = train.Direction.Opposite()

	if t.After(s.end) {
		return nil
	}

	// The reversing move counts as travel time on the next entry.
	train.ArrivalTime = t.Add(s.topology.Turnaround)
	train.JourneySeconds = int(s.topology.Turnaround.Seconds())

	s.schedule(&Event{
		Time: train.ArrivalTime.Add(s.topology.Dwell), Type: EventTrainDeparture,
		Train: train, Station: station,
	})
	return nil
}

func (s *Simulation) handleInsertion(ev *Event) error {
	train, t := ev.Train, ev.Time
	if !train.Active {
		return nil
	}

	depot := s.topology.DepotSegment()
	if depot == nil {
		return &TopologyError{Detail: "no depot segment (station 2 -> 1)"}
	}

	if s.queue.segmentEnterAt(depot, t) || depot.OccupiedBy != nil ||
		s.topology.Station(1).Platforms[model.Northbound] != nil {
		retry, ok := s.resolveInsertion(ev, depot)
		if !ok {
			s.log.WithFields(logrus.Fields{
				"train": train.ID,
				"time":  t,
			}).Warn("arbitration loop, dropping insertion event")
			return nil
		}
		s.schedule(&Event{Time: retry, Type: EventTrainInsertion, Train: train})
		return nil
	}

	train.Direction = model.Northbound
	train.CurrentStation = nil
	train.CurrentSpeed = 0
	depot.Occupy(train, t)
	depot.NextAvailable = t.Add(depotTraversalTime)
	train.ArrivalTime = t.Add(depotTraversalTime)
	train.JourneySeconds = int(depotTraversalTime.Seconds())

	s.schedule(&Event{
		Time: train.ArrivalTime, Type: EventSegmentExit,
		Train: train, Station: s.topology.Station(1), Segment: depot,
	})
	return nil
}
