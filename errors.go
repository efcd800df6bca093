package mrt3sim

import "fmt"

// TopologyError means the line layout cannot support a required
// movement, e.g. a segment missing during loop-time calculation. It
// is fatal for the affected scheme.
type TopologyError struct {
	Detail string
}

func (e *TopologyError) Error() string {
	return "topology: " + e.Detail
}

// InvariantViolation means an event found a train, platform or
// segment in a state the state machine can never legally produce. The
// run is abandoned; partial results must not be persisted.
type InvariantViolation struct {
	Detail string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Detail
}

func invariantf(format string, args ...any) error {
	return &InvariantViolation{Detail: fmt.Sprintf(format, args...)}
}
