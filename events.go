package mrt3sim

import (
	"container/heap"
	"time"

	"github.com/khen08/mrt3sim/model"
)

// Event types, in tie-break order. When two events share a timestamp
// the lower ordinal runs first, so a period change takes effect before
// departures at the same instant, and a segment exit frees track
// before the arrival behind it is processed.
type EventType int

const (
	EventServicePeriodChange EventType = iota
	EventTrainDeparture
	EventSegmentExit
	EventTrainArrival
	EventTurnaround
	EventSegmentEnter
	EventTrainInsertion
)

func (t EventType) String() string {
	switch t {
	case EventServicePeriodChange:
		return "service_period_change"
	case EventTrainDeparture:
		return "train_departure"
	case EventSegmentExit:
		return "segment_exit"
	case EventTrainArrival:
		return "train_arrival"
	case EventTurnaround:
		return "turnaround"
	case EventSegmentEnter:
		return "segment_enter"
	case EventTrainInsertion:
		return "train_insertion"
	}
	return "unknown"
}

// An event carries only the references its type needs. Train, Station
// and Segment are soft references: handlers check the train's active
// flag before acting, which is how events for withdrawn trains die.
type Event struct {
	Time    time.Time
	Type    EventType
	Train   *Train
	Station *Station
	Segment *TrackSegment
	Period  *model.ServicePeriod

	seq int64
}

// Min-heap of events ordered by (time, type ordinal, insertion
// sequence). The sequence number makes ordering among identical
// (time, type) pairs deterministic for identical inputs.
type eventQueue struct {
	events  []*Event
	nextSeq int64
}

func newEventQueue() *eventQueue {
	return &eventQueue{}
}

func (q *eventQueue) Len() int { return len(q.events) }

func (q *eventQueue) Less(i, j int) bool {
	a, b := q.events[i], q.events[j]
	if !a.Time.Equal(b.Time) {
		return a.Time.Before(b.Time)
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.seq < b.seq
}

func (q *eventQueue) Swap(i, j int) {
	q.events[i], q.events[j] = q.events[j], q.events[i]
}

func (q *eventQueue) Push(x any) {
	q.events = append(q.events, x.(*Event))
}

func (q *eventQueue) Pop() any {
	old := q.events
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	q.events = old[:n-1]
	return ev
}

func (q *eventQueue) schedule(ev *Event) {
	ev.seq = q.nextSeq
	q.nextSeq++
	heap.Push(q, ev)
}

func (q *eventQueue) popNext() *Event {
	if len(q.events) == 0 {
		return nil
	}
	return heap.Pop(q).(*Event)
}

// The arbiter needs to peek at pending events to compute reschedule
// times. These scans walk the raw heap slice; order does not matter,
// only the earliest match.

// Earliest pending segment_exit for the given segment.
func (q *eventQueue) nextSegmentExit(seg *TrackSegment) (time.Time, bool) {
	var best time.Time
	found := false
	for _, ev := range q.events {
		if ev.Type != EventSegmentExit || ev.Segment != seg {
			continue
		}
		if !found || ev.Time.Before(best) {
			best = ev.Time
			found = true
		}
	}
	return best, found
}

// Earliest pending train_departure for the given train.
func (q *eventQueue) nextDepartureOf(train *Train) (time.Time, bool) {
	var best time.Time
	found := false
	for _, ev := range q.events {
		if ev.Type != EventTrainDeparture || ev.Train != train {
			continue
		}
		if !found || ev.Time.Before(best) {
			best = ev.Time
			found = true
		}
	}
	return best, found
}

// Reports whether some other train has a departure pending at the
// given station at exactly the given time.
func (q *eventQueue) departureCollision(station *Station, at time.Time, except *Train) bool {
	for _, ev := range q.events {
		if ev.Type == EventTrainDeparture && ev.Station == station &&
			ev.Train != except && ev.Time.Equal(at) {
			return true
		}
	}
	return false
}

// Reports whether a segment_enter for the given segment is pending at
// exactly the given time.
func (q *eventQueue) segmentEnterAt(seg *TrackSegment, at time.Time) bool {
	for _, ev := range q.events {
		if ev.Type == EventSegmentEnter && ev.Segment == seg && ev.Time.Equal(at) {
			return true
		}
	}
	return false
}

// Count of trains headed for the given station in the given
// direction. Counts pending arrivals plus pending segment exits that
// terminate at the station, since an arrival event only appears once
// its segment exit fires.
func (q *eventQueue) pendingArrivals(station *Station, dir model.Direction) int {
	n := 0
	for _, ev := range q.events {
		if ev.Train == nil || ev.Train.Direction != dir {
			continue
		}
		switch ev.Type {
		case EventTrainArrival:
			if ev.Station == station {
				n++
			}
		case EventSegmentExit:
			if ev.Segment != nil && ev.Segment.EndID == station.ID {
				n++
			}
		}
	}
	return n
}
