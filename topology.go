package mrt3sim

import (
	"fmt"
	"time"

	"github.com/khen08/mrt3sim/model"
)

// Physical train parameters in SI units.
type TrainSpec struct {
	Capacity         int
	CruisingSpeed    float64 // m/s
	PassthroughSpeed float64 // m/s
	Acceleration     float64 // m/s^2
	Deceleration     float64 // m/s^2
}

type Station struct {
	ID         int // 1-based index along the line
	Name       string
	Type       model.StationType
	IsTerminus bool

	// At most one train per direction.
	Platforms map[model.Direction]*Train

	// Outgoing segment per direction; nil at a terminus in the
	// unreachable direction.
	Tracks map[model.Direction]*TrackSegment

	Waiting []*DemandGroup
}

// ShouldStop reports whether a train serves this station. AB trains
// stop everywhere; AB stations are served by every train.
func (s *Station) ShouldStop(t *Train) bool {
	return s.Type == model.StationAB ||
		t.ServiceType == model.ServiceAB ||
		model.StationType(t.ServiceType) == s.Type
}

// WaitingPassengers sums passenger counts over waiting groups.
func (s *Station) WaitingPassengers() int {
	total := 0
	for _, g := range s.Waiting {
		total += g.Count
	}
	return total
}

// A directed track segment between adjacent stations. Identity is the
// ordered (StartID, EndID) pair.
type TrackSegment struct {
	StartID   int
	EndID     int
	Direction model.Direction
	Length    float64 // metres

	OccupiedBy    *Train
	LastEntryTime time.Time
	LastExitTime  time.Time
	NextAvailable time.Time
}

// Occupy claims the segment for a train. Returns false if another
// train holds it.
func (seg *TrackSegment) Occupy(t *Train, at time.Time) bool {
	if seg.OccupiedBy != nil && seg.OccupiedBy != t {
		return false
	}
	seg.OccupiedBy = t
	seg.LastEntryTime = at
	return true
}

// Release clears the segment. The occupant must match, anything else
// means the simulation state is corrupt.
func (seg *TrackSegment) Release(t *Train, at time.Time) error {
	if seg.OccupiedBy != t {
		return &InvariantViolation{
			Detail: fmt.Sprintf("train %d released segment %d->%d it does not occupy",
				t.ID, seg.StartID, seg.EndID),
		}
	}
	seg.OccupiedBy = nil
	seg.LastExitTime = at
	return nil
}

type Train struct {
	ID          int
	Spec        *TrainSpec
	ServiceType model.ServiceType
	Direction   model.Direction

	// Station the train is at, nil while in a segment.
	CurrentStation *Station
	Active         bool

	Boarded        []*DemandGroup
	PassengerCount int

	CurrentSpeed      float64 // m/s
	ArrivalTime       time.Time
	LastDepartureTime time.Time

	// Seconds spent traversing segments since the last recorded
	// timetable entry.
	JourneySeconds int
}

func (t *Train) RemainingCapacity() int {
	return t.Spec.Capacity - t.PassengerCount
}

type segmentKey struct {
	start, end int
}

// Topology holds the immutable line layout plus the mutable station,
// segment and train state for one scheme run.
type Topology struct {
	Stations []*Station
	Segments map[segmentKey]*TrackSegment
	Trains   []*Train
	Spec     TrainSpec

	Dwell      time.Duration
	Turnaround time.Duration
	ZoneLength float64 // metres
}

func kmhToMS(kmh float64) float64 { return kmh * 1000.0 / 3600.0 }

// buildTopology constructs stations, segments and the train roster
// for one scheme. The roster is sized to the maximum train count any
// service period demands.
func buildTopology(cfg model.Config, scheme model.Scheme) (*Topology, error) {
	n := len(cfg.StationNames)

	if scheme == model.SchemeSkipStop && len(cfg.SchemePattern) != n {
		return nil, &TopologyError{
			Detail: fmt.Sprintf("skip-stop needs %d scheme pattern entries, got %d",
				n, len(cfg.SchemePattern)),
		}
	}

	passthrough := cfg.PassthroughSpeed
	if passthrough == 0 {
		passthrough = model.DefaultPassthroughSpeed
	}

	tp := &Topology{
		Segments: map[segmentKey]*TrackSegment{},
		Spec: TrainSpec{
			Capacity:         cfg.MaxCapacity,
			CruisingSpeed:    kmhToMS(cfg.MaxSpeed),
			PassthroughSpeed: kmhToMS(passthrough),
			Acceleration:     cfg.Acceleration,
			Deceleration:     cfg.Deceleration,
		},
		Dwell:      time.Duration(cfg.DwellTime) * time.Second,
		Turnaround: time.Duration(cfg.TurnaroundTime) * time.Second,
		ZoneLength: model.DefaultZoneLengthMetres,
	}

	for i, name := range cfg.StationNames {
		typ := model.StationAB
		if scheme == model.SchemeSkipStop {
			typ = cfg.SchemePattern[i]
		}
		tp.Stations = append(tp.Stations, &Station{
			ID:         i + 1,
			Name:       name,
			Type:       typ,
			IsTerminus: i == 0 || i == n-1,
			Platforms:  map[model.Direction]*Train{},
			Tracks:     map[model.Direction]*TrackSegment{},
		})
	}

	for i := 0; i < n-1; i++ {
		metres := cfg.StationDistances[i] * 1000.0

		south := &TrackSegment{
			StartID:   i + 1,
			EndID:     i + 2,
			Direction: model.Southbound,
			Length:    metres,
		}
		north := &TrackSegment{
			StartID:   i + 2,
			EndID:     i + 1,
			Direction: model.Northbound,
			Length:    metres,
		}
		tp.Segments[segmentKey{south.StartID, south.EndID}] = south
		tp.Segments[segmentKey{north.StartID, north.EndID}] = north
		tp.Stations[i].Tracks[model.Southbound] = south
		tp.Stations[i+1].Tracks[model.Northbound] = north
	}

	roster := 0
	for _, p := range cfg.ServicePeriods {
		if c := p.TrainCount(scheme); c > roster {
			roster = c
		}
	}

	for id := 1; id <= roster; id++ {
		svc := model.ServiceAB
		if scheme == model.SchemeSkipStop {
			if id%2 == 1 {
				svc = model.ServiceA
			} else {
				svc = model.ServiceB
			}
		}
		tp.Trains = append(tp.Trains, &Train{
			ID:             id,
			Spec:           &tp.Spec,
			ServiceType:    svc,
			Direction:      model.Southbound,
			CurrentStation: tp.Stations[0],
		})
	}

	return tp, nil
}

// Station returns the station with the given 1-based id, or nil.
func (tp *Topology) Station(id int) *Station {
	if id < 1 || id > len(tp.Stations) {
		return nil
	}
	return tp.Stations[id-1]
}

// Segment returns the directed segment from start to end, or nil.
func (tp *Topology) Segment(start, end int) *TrackSegment {
	return tp.Segments[segmentKey{start, end}]
}

// The depot connects to the line through the northbound segment from
// station 2 to station 1; inserted trains traverse it to reach the
// north terminus.
func (tp *Topology) DepotSegment() *TrackSegment {
	return tp.Segment(2, 1)
}

// ActiveTrains counts trains currently in service.
func (tp *Topology) ActiveTrains() int {
	n := 0
	for _, t := range tp.Trains {
		if t.Active {
			n++
		}
	}
	return n
}

// TrainsInSegments counts trains currently occupying track.
func (tp *Topology) TrainsInSegments() int {
	n := 0
	for _, seg := range tp.Segments {
		if seg.OccupiedBy != nil {
			n++
		}
	}
	return n
}
