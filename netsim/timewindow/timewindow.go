// Package timewindow implements the conservative time-window protocol
// (spec.md §4.1): the smallest safe interval during which events can be
// processed in parallel without violating causality across the
// simulated network.
package timewindow

import "github.com/shadowsim/controller/netsim"

// Engine tracks the window state and computes each round's next safe
// window. All fields mutated by ManagerFinishedCurrentRound are read
// only between rounds (spec.md §5): callers must ensure the manager is
// not concurrently reading ExecuteWindowStart/End while a round is live.
type Engine struct {
	minJumpTimeConfig netsim.SimulationTime
	minJumpTime       netsim.SimulationTime
	nextMinJumpTime   netsim.SimulationTime

	executeWindowStart netsim.SimulationTime
	executeWindowEnd   netsim.SimulationTime
	endTime            netsim.SimulationTime
	bootstrapEndTime   netsim.SimulationTime
}

// Config groups the values needed to initialize an Engine.
type Config struct {
	MinJumpTimeConfig netsim.SimulationTime // 0 = unset
	Workers           int
	EndTime           netsim.SimulationTime
	BootstrapEndTime  netsim.SimulationTime
}

// New builds an Engine and applies the initial-window rule from spec.md
// §4.1: multi-worker runs start with a single minimum jump's worth of
// window; single-threaded runs (Workers == 0) run everything in one
// round.
func New(cfg Config) *Engine {
	e := &Engine{
		minJumpTimeConfig: cfg.MinJumpTimeConfig,
		endTime:           cfg.EndTime,
		bootstrapEndTime:  cfg.BootstrapEndTime,
	}

	e.executeWindowStart = 0
	if cfg.Workers > 0 {
		e.executeWindowEnd = e.getMinTimeJump()
		if e.executeWindowEnd > e.endTime {
			e.executeWindowEnd = e.endTime
		}
	} else {
		e.executeWindowEnd = e.endTime
	}

	return e
}

// getMinTimeJump returns the current minimum time jump: minJumpTime if
// set, else the 10ms default floor, raised to minJumpTimeConfig when
// that floor is higher (spec.md §4.1).
func (e *Engine) getMinTimeJump() netsim.SimulationTime {
	m := e.minJumpTime
	if m == 0 {
		m = netsim.DefaultMinTimeJump
	}
	if e.minJumpTimeConfig > 0 && m < e.minJumpTimeConfig {
		m = e.minJumpTimeConfig
	}
	return m
}

// GetMinTimeJump exposes getMinTimeJump for callers outside the package
// (e.g. the controller logging the effective floor at startup).
func (e *Engine) GetMinTimeJump() netsim.SimulationTime {
	return e.getMinTimeJump()
}

// UpdateMinTimeJump is called by the topology layer when a shorter
// end-to-end path becomes known. It monotonically shrinks nextMinJumpTime
// within (and, per the pinned Open Question decision, across) the run.
// observedMs must be > 0.
func (e *Engine) UpdateMinTimeJump(observedMs uint64) {
	o := netsim.SimulationTime(observedMs) * netsim.Millisecond
	if o == 0 {
		return
	}
	if e.nextMinJumpTime == 0 || o < e.nextMinJumpTime {
		e.nextMinJumpTime = o
	}
}

// ManagerFinishedCurrentRound is called by the worker at round end with
// the earliest pending event time it observed. It promotes any shrunk
// jump, computes and clamps the next window, and reports whether the run
// should continue (spec.md §4.1 steps 1-5).
//
// Open Question (spec.md §9), pinned: nextMinJumpTime is NOT reset after
// being promoted to minJumpTime — it keeps shrinking monotonically for
// the rest of the run, matching the documented source behavior.
func (e *Engine) ManagerFinishedCurrentRound(minNextEventTime netsim.SimulationTime) (start, end netsim.SimulationTime, cont bool) {
	if e.nextMinJumpTime != 0 {
		e.minJumpTime = e.nextMinJumpTime
	}

	newStart := minNextEventTime
	newEnd := minNextEventTime + e.getMinTimeJump()
	if newEnd > e.endTime {
		newEnd = e.endTime
	}

	e.executeWindowStart = newStart
	e.executeWindowEnd = newEnd

	return newStart, newEnd, newStart < newEnd
}

// Window returns the currently committed execute window.
func (e *Engine) Window() (start, end netsim.SimulationTime) {
	return e.executeWindowStart, e.executeWindowEnd
}

// EndTime returns the absolute simulation stop time.
func (e *Engine) EndTime() netsim.SimulationTime {
	return e.endTime
}

// SetEndTime allows a signal handler to force early termination: the
// next ManagerFinishedCurrentRound call clamps newEnd to the new,
// smaller endTime (spec.md §5 "Cancellation / timeouts").
func (e *Engine) SetEndTime(t netsim.SimulationTime) {
	e.endTime = t
}

// BootstrapEndTime returns the time at which bandwidth enforcement
// begins; before this, links are unlimited.
func (e *Engine) BootstrapEndTime() netsim.SimulationTime {
	return e.bootstrapEndTime
}
