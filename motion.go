package mrt3sim

import (
	"fmt"
	"math"
	"time"

	"github.com/khen08/mrt3sim/model"
)

// roundHalfToEven rounds to the nearest integer, ties to even, which
// keeps headways from biasing long or short when loop time divides
// the fleet exactly in half.
func roundHalfToEven(x float64) int {
	return int(math.RoundToEven(x))
}

// traversalTime computes the time in whole seconds to cover a segment
// of the given length, starting at speed v0, and the train's speed on
// exit. Two profiles exist: stopping at the far station (brake to 0,
// accelerate to cruise, cruise the remainder) and passing through it
// (brake to passthrough speed, hold it through the platform zone,
// accelerate back to cruise, cruise the remainder). Fractions of a
// second are truncated for scheduling.
func traversalTime(spec *TrainSpec, v0, length float64, stopAtNext bool, zone float64) (int, float64) {
	vc := spec.CruisingSpeed
	a := spec.Acceleration
	d := spec.Deceleration

	if stopAtNext {
		tDec := v0 / d
		xDec := 0.5 * d * tDec * tDec
		if xDec > length {
			xDec = length
		}
		tAcc := vc / a
		xAcc := 0.5 * a * tAcc * tAcc
		tCruise := math.Max(0, length-xDec-xAcc) / vc
		return int(tDec + tAcc + tCruise), 0
	}

	vp := spec.PassthroughSpeed
	tDec := (v0 - vp) / d
	tZone := zone / vp
	tAcc := (vc - vp) / a
	xAcc := 0.5 * a * tAcc * tAcc
	tCruise := math.Max(0, length-xAcc) / vc
	return int(tDec + tZone + tAcc + tCruise), vp
}

// LoopTime walks a representative train of the given service type
// from station 1 to the far terminus and back: traversal of every
// segment, dwell at every served intermediate station, one turnaround
// at the far end, and a final dwell on return. The result anchors the
// headway for every service period.
func (tp *Topology) LoopTime(svc model.ServiceType) (time.Duration, error) {
	n := len(tp.Stations)
	walker := &Train{ServiceType: svc, Spec: &tp.Spec}

	total := time.Duration(0)
	speed := 0.0

	walk := func(from, to, step int) error {
		for i := from; i != to; i += step {
			seg := tp.Segment(i, i+step)
			if seg == nil {
				return &TopologyError{Detail: fmt.Sprintf("no segment %d->%d", i, i+step)}
			}
			next := tp.Station(i + step)
			stop := next.IsTerminus || next.ShouldStop(walker)
			secs, v := traversalTime(&tp.Spec, speed, seg.Length, stop, tp.ZoneLength)
			total += time.Duration(secs) * time.Second
			speed = v
			if stop && !next.IsTerminus {
				total += tp.Dwell
			}
		}
		return nil
	}

	if err := walk(1, n, 1); err != nil {
		return 0, err
	}
	total += tp.Turnaround
	speed = 0
	if err := walk(n, 1, -1); err != nil {
		return 0, err
	}
	total += tp.Dwell

	return total, nil
}

// HeadwayMinutes derives the period headway from loop time and fleet
// size, rounding half to even.
func HeadwayMinutes(loop time.Duration, trainCount int) int {
	if trainCount <= 0 {
		return 0
	}
	return roundHalfToEven(loop.Minutes() / float64(trainCount))
}
