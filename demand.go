package mrt3sim

import (
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khen08/mrt3sim/model"
)

// A passenger demand group: Count passengers travelling together from
// Origin to Destination, appearing at the origin at ArrivalTime.
// Groups board and alight as a unit; a group larger than a train's
// remaining capacity waits for the next one.
type DemandGroup struct {
	ID            int
	OriginID      int
	DestinationID int
	ArrivalTime   time.Time
	Count         int

	TripType          model.TripType
	TransferStationID int // 0 unless TripType is TRANSFER

	Status    model.GroupStatus
	Direction model.Direction
	TrainID   int

	BoardingTime              time.Time
	DepartureFromOriginTime   time.Time
	ArrivalAtTransferTime     time.Time
	DepartureFromTransferTime time.Time
	CompletionTime            time.Time

	WaitSeconds   int
	TravelSeconds int
}

// nextStop is the station the group must reach on its current leg.
func (g *DemandGroup) nextStop() int {
	if g.TripType == model.TripTransfer && g.Status == model.StatusWaitingAtOrigin {
		return g.TransferStationID
	}
	return g.DestinationID
}

func (g *DemandGroup) result() model.DemandResult {
	return model.DemandResult{
		GroupID:             g.ID,
		OriginID:            g.OriginID,
		DestinationID:       g.DestinationID,
		TransferStationID:   g.TransferStationID,
		TripType:            g.TripType,
		PassengerCount:      g.Count,
		Status:              g.Status,
		ArrivalAtOrigin:     g.ArrivalTime,
		DepartureFromOrigin: g.DepartureFromOriginTime,
		CompletionTime:      g.CompletionTime,
		WaitTimeSeconds:     g.WaitSeconds,
		TravelTimeSeconds:   g.TravelSeconds,
	}
}

// chooseTransferStation picks the AB station minimising total detour
// |origin-c| + |c-destination|, ties broken toward the station closer
// to the origin. Returns 0 if the line has no AB station.
func chooseTransferStation(tp *Topology, origin, dest int) int {
	best := 0
	bestDetour := math.MaxInt
	bestToOrigin := math.MaxInt
	for _, st := range tp.Stations {
		if st.Type != model.StationAB {
			continue
		}
		toOrigin := abs(origin - st.ID)
		detour := toOrigin + abs(st.ID-dest)
		if detour < bestDetour || (detour == bestDetour && toOrigin < bestToOrigin) {
			best = st.ID
			bestDetour = detour
			bestToOrigin = toOrigin
		}
	}
	return best
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// servedDirectly reports whether one train type can serve both
// stations, i.e. they share a type or either is AB.
func servedDirectly(a, b model.StationType) bool {
	return a == b || a == model.StationAB || b == model.StationAB
}

// buildDemandGroups turns raw demand records into groups attached to
// their origin stations' waiting lists. Records with unknown station
// ids or origin equal to destination are skipped with a warning.
// Under skip-stop, O-D pairs with no shared train type become
// TRANSFER trips routed through an AB station.
func buildDemandGroups(tp *Topology, scheme model.Scheme, records []model.DemandRecord, log logrus.FieldLogger) []*DemandGroup {
	groups := make([]*DemandGroup, 0, len(records))
	nextID := 1

	for _, rec := range records {
		origin := tp.Station(rec.Origin)
		dest := tp.Station(rec.Destination)
		if origin == nil || dest == nil || rec.Origin == rec.Destination || rec.Count <= 0 {
			log.WithFields(logrus.Fields{
				"origin":      rec.Origin,
				"destination": rec.Destination,
				"count":       rec.Count,
			}).Warn("skipping invalid demand record")
			continue
		}

		g := &DemandGroup{
			ID:            nextID,
			OriginID:      rec.Origin,
			DestinationID: rec.Destination,
			ArrivalTime:   rec.Time,
			Count:         rec.Count,
			TripType:      model.TripDirect,
			Status:        model.StatusWaitingAtOrigin,
			Direction:     model.DirectionBetween(rec.Origin, rec.Destination),
		}

		if scheme == model.SchemeSkipStop && !servedDirectly(origin.Type, dest.Type) {
			transfer := chooseTransferStation(tp, rec.Origin, rec.Destination)
			if transfer == 0 {
				log.WithFields(logrus.Fields{
					"origin":      rec.Origin,
					"destination": rec.Destination,
				}).Warn("no transfer station available, skipping demand record")
				continue
			}
			g.TripType = model.TripTransfer
			g.TransferStationID = transfer
			g.Direction = model.DirectionBetween(rec.Origin, transfer)
		}

		nextID++
		groups = append(groups, g)
		origin.Waiting = append(origin.Waiting, g)
	}

	for _, st := range tp.Stations {
		sort.SliceStable(st.Waiting, func(i, j int) bool {
			return st.Waiting[i].ArrivalTime.Before(st.Waiting[j].ArrivalTime)
		})
	}

	return groups
}

// Demand aggregation buckets for the comparison report.
type DemandBucket string

const (
	BucketFullService DemandBucket = "FULL_SERVICE"
	BucketAMPeak      DemandBucket = "AM_PEAK"
	BucketPMPeak      DemandBucket = "PM_PEAK"
)

type AggregateKey struct {
	OriginID      int
	DestinationID int
	Bucket        DemandBucket
}

// AggregateDemand buckets passenger counts by O-D pair over the full
// service day and over the two peak windows (07:00-09:00 and
// 17:00-19:00, end-exclusive).
func AggregateDemand(results []model.DemandResult) map[AggregateKey]int {
	out := map[AggregateKey]int{}
	for _, r := range results {
		key := AggregateKey{OriginID: r.OriginID, DestinationID: r.DestinationID}

		key.Bucket = BucketFullService
		out[key] += r.PassengerCount

		h := r.ArrivalAtOrigin.Hour()
		if h >= 7 && h < 9 {
			key.Bucket = BucketAMPeak
			out[key] += r.PassengerCount
		} else if h >= 17 && h < 19 {
			key.Bucket = BucketPMPeak
			out[key] += r.PassengerCount
		}
	}
	return out
}
