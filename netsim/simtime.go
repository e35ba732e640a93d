package netsim

import "math"

// SimulationTime is a count of simulated nanoseconds since the start of
// the run. Unbounded represents "no bound" for fields such as endTime.
type SimulationTime uint64

// Unbounded is the sentinel SimulationTime meaning "no upper bound".
const Unbounded SimulationTime = math.MaxUint64

// Millisecond is one millisecond expressed as a SimulationTime duration.
const Millisecond SimulationTime = 1_000_000

// DefaultMinTimeJump is the floor applied when no minimum jump has been
// observed or configured yet (spec: "10 ms default floor").
const DefaultMinTimeJump SimulationTime = 10 * Millisecond

// IsBounded reports whether t represents an actual bound rather than
// the Unbounded sentinel.
func (t SimulationTime) IsBounded() bool {
	return t != Unbounded
}
