package model

import (
	"time"
)

// Service scheme under simulation.
type Scheme string

const (
	SchemeRegular  Scheme = "REGULAR"
	SchemeSkipStop Scheme = "SKIP-STOP"
)

// Station classification for skip-stop service. AB stations are
// served by every train. Under the regular scheme all stations are AB.
type StationType string

const (
	StationA  StationType = "A"
	StationB  StationType = "B"
	StationAB StationType = "AB"
)

// Service type of a train. Mirrors StationType: an A train serves A
// and AB stations, a B train serves B and AB stations, an AB train
// serves everything.
type ServiceType string

const (
	ServiceA  ServiceType = "A"
	ServiceB  ServiceType = "B"
	ServiceAB ServiceType = "AB"
)

// Travel direction along the line. Station 1 is the north terminus,
// so southbound moves toward higher station ids.
type Direction string

const (
	Southbound Direction = "southbound"
	Northbound Direction = "northbound"
)

func (d Direction) Opposite() Direction {
	if d == Southbound {
		return Northbound
	}
	return Southbound
}

// DirectionBetween gives the travel direction from one station id to
// another.
func DirectionBetween(from, to int) Direction {
	if to > from {
		return Southbound
	}
	return Northbound
}

type TripType string

const (
	TripDirect   TripType = "DIRECT"
	TripTransfer TripType = "TRANSFER"
)

// Lifecycle of a passenger demand group. Statuses only ever move
// forward.
type GroupStatus string

const (
	StatusWaitingAtOrigin    GroupStatus = "waiting_at_origin"
	StatusInTransitLeg1      GroupStatus = "in_transit_leg1"
	StatusWaitingForTransfer GroupStatus = "waiting_for_transfer"
	StatusInTransitLeg2      GroupStatus = "in_transit_leg2"
	StatusCompleted          GroupStatus = "completed"
)

type TrainStatus string

const (
	TrainActive   TrainStatus = "active"
	TrainInactive TrainStatus = "inactive"
)

// A service period sets the target fleet size from its start hour
// until the next period begins. Train counts differ per scheme.
type ServicePeriod struct {
	Name               string `json:"name"`
	StartHour          int    `json:"start_hour"`
	RegularTrainCount  int    `json:"regular_train_count"`
	SkipStopTrainCount int    `json:"skip_stop_train_count"`
}

func (p ServicePeriod) TrainCount(scheme Scheme) int {
	if scheme == SchemeSkipStop {
		return p.SkipStopTrainCount
	}
	return p.RegularTrainCount
}

// One timetable row: a train's visit to a station.
type TimetableEntry struct {
	TrainID           int         `csv:"train_id"`
	ServiceType       ServiceType `csv:"service_type"`
	StationID         int         `csv:"station_id"`
	Direction         Direction   `csv:"direction"`
	ArrivalTime       time.Time   `csv:"arrival_time"`
	DepartureTime     time.Time   `csv:"departure_time"`
	TravelTimeSeconds int         `csv:"travel_time_seconds"`
	Boarded           int         `csv:"passengers_boarded"`
	Alighted          int         `csv:"passengers_alighted"`
	StationWaiting    int         `csv:"station_waiting"`
	TrainOccupancy    int         `csv:"train_occupancy"`
	TrainStatus       TrainStatus `csv:"train_status"`
}

// One demand record from the input table: passengers appearing at an
// origin during a single minute, bound for a destination.
type DemandRecord struct {
	Time        time.Time
	Origin      int
	Destination int
	Count       int
}

// Final state of a demand group after a scheme run.
type DemandResult struct {
	GroupID             int         `csv:"group_id"`
	OriginID            int         `csv:"origin_id"`
	DestinationID       int         `csv:"destination_id"`
	TransferStationID   int         `csv:"transfer_station_id"`
	TripType            TripType    `csv:"trip_type"`
	PassengerCount      int         `csv:"passenger_count"`
	Status              GroupStatus `csv:"status"`
	ArrivalAtOrigin     time.Time   `csv:"arrival_time_at_origin"`
	DepartureFromOrigin time.Time   `csv:"departure_from_origin"`
	CompletionTime      time.Time   `csv:"completion_time"`
	WaitTimeSeconds     int         `csv:"wait_time_seconds"`
	TravelTimeSeconds   int         `csv:"travel_time_seconds"`
}

// Per-scheme run totals.
type Metrics struct {
	PassengersBoarded  int     `csv:"passengers_boarded"`
	TotalWaitSeconds   int64   `csv:"total_wait_seconds"`
	TotalTravelSeconds int64   `csv:"total_travel_seconds"`
	CompletedGroups    int     `csv:"completed_groups"`
	RunDurationSeconds float64 `csv:"run_duration_seconds"`
}

func (m Metrics) AverageWaitSeconds() float64 {
	if m.CompletedGroups == 0 {
		return 0
	}
	return float64(m.TotalWaitSeconds) / float64(m.CompletedGroups)
}

func (m Metrics) AverageTravelSeconds() float64 {
	if m.CompletedGroups == 0 {
		return 0
	}
	return float64(m.TotalTravelSeconds) / float64(m.CompletedGroups)
}
