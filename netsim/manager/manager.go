// Package manager defines the worker interface the controller drives
// (spec.md §6 "Manager interface produced") and the capability object
// the controller exposes back to it (spec.md §9: "model as a capability
// object... not as mutual ownership").
package manager

import (
	"net"

	"github.com/shadowsim/controller/netsim"
)

// Manager is implemented by the worker that advances simulated time
// within a controller-issued window and reports back the earliest
// pending event time. Per-event stepping is entirely the manager's
// concern (spec.md §1 Non-goals); the controller only drives the
// lifecycle methods below.
type Manager interface {
	// AddNewVirtualHost registers a host with the manager.
	AddNewVirtualHost(params netsim.HostParameters) error
	// AddNewVirtualProcess registers one virtual process on hostname.
	AddNewVirtualProcess(hostname string, proc netsim.ProcessDescriptor) error
	// GetRawCPUFrequency returns the host CPU frequency the manager
	// measured or was configured with.
	GetRawCPUFrequency() uint64
	// Run blocks until the simulation ends, driving rounds and calling
	// Controller.ManagerFinishedCurrentRound between them.
	Run() error
	// Free releases manager-owned resources and returns the process exit
	// code (0 on clean completion).
	Free() int
}

// Controller is the capability surface the manager is given back: round
// completion, routing queries and DNS — nothing else. This is the
// "capability object" from spec.md §9, deliberately narrower than the
// controller's own type so the manager cannot reach into controller
// internals it doesn't own.
type Controller interface {
	// CurrentWindow returns the execute window currently committed by the
	// controller (set once before the manager starts, then after every
	// ManagerFinishedCurrentRound call).
	CurrentWindow() (start, end netsim.SimulationTime)

	// ManagerFinishedCurrentRound reports the earliest pending event time
	// and receives the next execute window plus a continuation flag.
	ManagerFinishedCurrentRound(minNextEventTime netsim.SimulationTime) (start, end netsim.SimulationTime, cont bool)

	GetLatency(src, dst net.IP) float64
	GetReliability(src, dst net.IP) float64
	IsRoutable(src, dst net.IP) bool
	IncrementPacketCount(src, dst net.IP)

	LookupByName(name string) (net.IP, bool)
	LookupByAddr(addr net.IP) (string, bool)
}

// Factory creates a Manager bound to a controller capability, seeded
// deterministically. Returning a nil Manager and non-nil error is an
// InternalInvariantError per spec.md §7 and the controller panics on it
// (spec.md §4.4 step 4: "Must not fail; panic if it does").
type Factory func(ctrl Controller, endTime, bootstrapEndTime netsim.SimulationTime, seed int64) (Manager, error)
