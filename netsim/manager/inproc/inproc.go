// Package inproc provides a single, in-process Manager implementation
// sufficient to drive the controller end-to-end: it advances a single
// event queue of process start/stop events (shared by all hosts) within
// each controller-issued window and reports
// the earliest pending event time back. Multi-worker managers are a
// pluggable extension point (spec.md keeps manager internals out of
// scope); this is the reference implementation used for the
// single-worker case and for tests.
package inproc

import (
	"container/heap"
	"fmt"
	"math/rand"

	"github.com/sirupsen/logrus"

	"github.com/shadowsim/controller/netsim"
	"github.com/shadowsim/controller/netsim/manager"
)

// eventKind distinguishes the two lifecycle events a virtual process
// generates.
type eventKind int

const (
	eventStart eventKind = iota
	eventStop
)

type procEvent struct {
	time     netsim.SimulationTime
	kind     eventKind
	hostname string
	plugin   string
}

// eventHeap orders procEvents by time, matching the teacher's
// container/heap-based EventHeap idiom (sim/cluster/event_heap.go).
type eventHeap []procEvent

func (h eventHeap) Len() int            { return len(h) }
func (h eventHeap) Less(i, j int) bool  { return h[i].time < h[j].time }
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)         { *h = append(*h, x.(procEvent)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type hostState struct {
	params    netsim.HostParameters
	processes []netsim.ProcessDescriptor
}

// Manager is the in-process reference Manager.
type Manager struct {
	ctrl    manager.Controller
	endTime netsim.SimulationTime
	rng     *rand.Rand

	hosts  map[string]*hostState
	events eventHeap

	exitCode int
}

// New implements manager.Factory.
func New(ctrl manager.Controller, endTime, bootstrapEndTime netsim.SimulationTime, seed int64) (manager.Manager, error) {
	return &Manager{
		ctrl:    ctrl,
		endTime: endTime,
		rng:     rand.New(rand.NewSource(seed)),
		hosts:   make(map[string]*hostState),
	}, nil
}

// AddNewVirtualHost implements manager.Manager.
func (m *Manager) AddNewVirtualHost(params netsim.HostParameters) error {
	if _, exists := m.hosts[params.Hostname]; exists {
		return fmt.Errorf("inproc: host %q already registered", params.Hostname)
	}
	m.hosts[params.Hostname] = &hostState{params: params}
	return nil
}

// AddNewVirtualProcess implements manager.Manager.
func (m *Manager) AddNewVirtualProcess(hostname string, proc netsim.ProcessDescriptor) error {
	h, ok := m.hosts[hostname]
	if !ok {
		return fmt.Errorf("inproc: unknown host %q", hostname)
	}
	h.processes = append(h.processes, proc)
	heap.Push(&m.events, procEvent{time: proc.StartTime, kind: eventStart, hostname: hostname, plugin: proc.PluginPath})
	if proc.StopTime.IsBounded() {
		heap.Push(&m.events, procEvent{time: proc.StopTime, kind: eventStop, hostname: hostname, plugin: proc.PluginPath})
	}
	return nil
}

// GetRawCPUFrequency implements manager.Manager. The in-process
// reference manager doesn't probe real hardware; it reports a fixed,
// documented value.
func (m *Manager) GetRawCPUFrequency() uint64 {
	return 2_000_000 // 2 GHz, in kHz-equivalent units matching HostParameters.CPUFrequency's scale
}

// Run drives rounds until the controller reports no continuation.
func (m *Manager) Run() error {
	for {
		_, windowEnd := m.ctrl.CurrentWindow()

		for m.events.Len() > 0 && m.events[0].time < windowEnd {
			ev := heap.Pop(&m.events).(procEvent)
			m.execute(ev)
		}

		minNext := netsim.Unbounded
		if m.events.Len() > 0 {
			minNext = m.events[0].time
		} else {
			minNext = m.endTime
		}

		_, _, cont := m.ctrl.ManagerFinishedCurrentRound(minNext)
		if !cont {
			break
		}
	}
	return nil
}

func (m *Manager) execute(ev procEvent) {
	switch ev.kind {
	case eventStart:
		logrus.Debugf("[inproc] t=%d host=%s start %s", ev.time, ev.hostname, ev.plugin)
	case eventStop:
		logrus.Debugf("[inproc] t=%d host=%s stop %s", ev.time, ev.hostname, ev.plugin)
	}
}

// Free implements manager.Manager.
func (m *Manager) Free() int {
	return m.exitCode
}
