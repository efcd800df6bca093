package mrt3sim

import (
	"time"

	"github.com/khen08/mrt3sim/model"
)

// canReach reports whether a train of the given service type stops at
// a station of the given type.
func canReach(svc model.ServiceType, target model.StationType) bool {
	return svc == model.ServiceAB ||
		target == model.StationAB ||
		model.StationType(svc) == target
}

// exchangePassengers runs the alight and board phases for a train
// dwelling at a station, with the given departure time. Returns the
// passenger counts boarded and alighted.
func (s *Simulation) exchangePassengers(train *Train, station *Station, departure time.Time) (boarded, alighted int) {
	alighted = s.alightPassengers(train, station)
	boarded = s.boardPassengers(train, station, departure)
	return boarded, alighted
}

// alightPassengers removes groups whose current leg ends here. Direct
// and leg-2 groups complete; leg-1 transfer groups rejoin the
// station's waiting list pointed at their final destination.
func (s *Simulation) alightPassengers(train *Train, station *Station) int {
	alighted := 0
	kept := train.Boarded[:0]

	for _, g := range train.Boarded {
		switch {
		case g.TripType == model.TripDirect && g.DestinationID == station.ID:
			s.completeGroup(g, train)
			alighted += g.Count

		case g.TripType == model.TripTransfer &&
			g.Status == model.StatusInTransitLeg1 &&
			g.TransferStationID == station.ID:
			g.Status = model.StatusWaitingForTransfer
			g.ArrivalAtTransferTime = train.ArrivalTime
			g.Direction = model.DirectionBetween(g.TransferStationID, g.DestinationID)
			station.Waiting = append(station.Waiting, g)
			alighted += g.Count

		case g.TripType == model.TripTransfer &&
			g.Status == model.StatusInTransitLeg2 &&
			g.DestinationID == station.ID:
			s.completeGroup(g, train)
			alighted += g.Count

		default:
			kept = append(kept, g)
			continue
		}
		train.PassengerCount -= g.Count
	}

	for i := len(kept); i < len(train.Boarded); i++ {
		train.Boarded[i] = nil
	}
	train.Boarded = kept
	return alighted
}

func (s *Simulation) completeGroup(g *DemandGroup, train *Train) {
	g.Status = model.StatusCompleted
	g.CompletionTime = train.ArrivalTime

	// Travel time covers time aboard only; the transfer wait is
	// already accounted in WaitSeconds.
	if g.TripType == model.TripTransfer {
		leg1 := g.ArrivalAtTransferTime.Sub(g.DepartureFromOriginTime)
		leg2 := g.CompletionTime.Sub(g.DepartureFromTransferTime)
		g.TravelSeconds = int((leg1 + leg2).Seconds())
	} else {
		g.TravelSeconds = int(g.CompletionTime.Sub(g.DepartureFromOriginTime).Seconds())
	}

	s.metrics.CompletedGroups++
	s.metrics.TotalWaitSeconds += int64(g.WaitSeconds)
	s.metrics.TotalTravelSeconds += int64(g.TravelSeconds)
}

// boardPassengers boards compatible waiting groups in arrival order,
// whole groups only, until capacity runs out.
func (s *Simulation) boardPassengers(train *Train, station *Station, departure time.Time) int {
	boarded := 0
	kept := station.Waiting[:0]

	for i, g := range station.Waiting {
		if train.RemainingCapacity() == 0 {
			kept = append(kept, station.Waiting[i:]...)
			break
		}
		if !s.compatible(g, train, station, departure) || g.Count > train.RemainingCapacity() {
			kept = append(kept, g)
			continue
		}

		switch g.Status {
		case model.StatusWaitingAtOrigin:
			g.BoardingTime = departure
			g.DepartureFromOriginTime = departure
			g.Status = model.StatusInTransitLeg1
			g.WaitSeconds += int(departure.Sub(g.ArrivalTime).Seconds())
			s.metrics.PassengersBoarded += g.Count
		case model.StatusWaitingForTransfer:
			g.DepartureFromTransferTime = departure
			g.Status = model.StatusInTransitLeg2
			g.WaitSeconds += int(departure.Sub(g.ArrivalAtTransferTime).Seconds())
		}

		g.TrainID = train.ID
		train.Boarded = append(train.Boarded, g)
		train.PassengerCount += g.Count
		boarded += g.Count
	}

	for i := len(kept); i < len(station.Waiting); i++ {
		station.Waiting[i] = nil
	}
	station.Waiting = kept
	return boarded
}

// compatible checks every boarding condition: the train stops here,
// travels the group's way, the group has already arrived, and the
// train's service type reaches the group's next required stop.
func (s *Simulation) compatible(g *DemandGroup, train *Train, station *Station, departure time.Time) bool {
	if !station.ShouldStop(train) {
		return false
	}
	if g.Direction != train.Direction {
		return false
	}

	switch g.Status {
	case model.StatusWaitingAtOrigin:
		if g.ArrivalTime.After(departure) {
			return false
		}
	case model.StatusWaitingForTransfer:
		if g.ArrivalAtTransferTime.After(departure) {
			return false
		}
	default:
		return false
	}

	next := s.topology.Station(g.nextStop())
	if next == nil {
		return false
	}
	return canReach(train.ServiceType, next.Type)
}
