// Package controller implements the simulation controller: the
// top-level coordinator that owns topology, addressing, DNS, randomness
// and run-time boundaries, and drives a manager through bounded time
// windows (spec.md §4.4).
package controller

import (
	"fmt"
	"math/rand"
	"net"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/shadowsim/controller/netsim"
	"github.com/shadowsim/controller/netsim/config"
	"github.com/shadowsim/controller/netsim/dns"
	"github.com/shadowsim/controller/netsim/hostreg"
	"github.com/shadowsim/controller/netsim/ipassign"
	"github.com/shadowsim/controller/netsim/manager"
	"github.com/shadowsim/controller/netsim/netgraph"
	"github.com/shadowsim/controller/netsim/routing"
	"github.com/shadowsim/controller/netsim/timewindow"
)

// Exit codes, per spec.md §6.
const (
	ExitOK    = 0
	ExitFatal = 1
)

// Controller is the single process-wide coordinator (spec.md §9: modeled
// as a value threaded through initialization rather than hidden global
// state — callers own the *Controller they construct with New).
type Controller struct {
	config *config.Options

	runTimer time.Time
	random   *rand.Rand

	graph        *netgraph.Graph
	ipAssignment *ipassign.Assignment
	routingInfo  *routing.Info
	dns          *dns.Registry
	timeWindow   *timewindow.Engine

	managerFactory manager.Factory
	resolver       hostreg.PluginResolver
	mgr            manager.Manager

	stopRequested atomic.Bool

	bufferedLogging bool
	loggingHook     *bufferedHook

	onRoundFinished func(start, end, minNextEventTime netsim.SimulationTime)
}

// Options groups the dependencies New needs beyond config.Options:
// the manager factory (spec.md §9: a pluggable capability-driven
// worker), the plugin path resolver used during host registration, and
// an optional per-round observer for external ledgers.
type Options struct {
	ManagerFactory manager.Factory
	Resolver       hostreg.PluginResolver

	// OnRoundFinished, if set, is called after every
	// ManagerFinishedCurrentRound with the window just committed and the
	// minNextEventTime that produced it. Used to feed an external ledger
	// (e.g. netsim/statusapi/history) without the controller depending on
	// one directly.
	OnRoundFinished func(start, end, minNextEventTime netsim.SimulationTime)
}

// New constructs a Controller bound to cfg. It does not load the graph
// or spawn the manager — call Run for that.
func New(cfg *config.Options, opts Options) *Controller {
	return &Controller{
		config:          cfg,
		runTimer:        time.Now(),
		random:          rand.New(rand.NewSource(cfg.Seed)),
		managerFactory:  opts.ManagerFactory,
		resolver:        opts.Resolver,
		onRoundFinished: opts.OnRoundFinished,
	}
}

// RequestStop sets the atomic stop flag consulted by
// ManagerFinishedCurrentRound (spec.md §9 "signal-driven early
// termination"). Safe to call from a signal handler goroutine; it must
// never be called from inside the manager's round-processing code path
// since that would contend with the synchronization barrier described in
// spec.md §5.
func (c *Controller) RequestStop() {
	c.stopRequested.Store(true)
}

// Run executes the full state machine from spec.md §4.4 and returns the
// process exit code.
func (c *Controller) Run() int {
	// LOAD_GRAPH
	graph, err := netgraph.Load(c.config.GraphPath)
	if err != nil {
		logrus.Errorf("controller: loading graph: %v", err)
		return ExitFatal
	}
	c.graph = graph

	// INIT_ASSIGNMENT_DNS
	c.ipAssignment = ipassign.New()
	c.dns = dns.New()

	// INIT_WINDOWS
	c.timeWindow = timewindow.New(timewindow.Config{
		MinJumpTimeConfig: c.config.Runahead,
		Workers:           c.config.Workers,
		EndTime:           c.config.StopTime,
		BootstrapEndTime:  c.config.BootstrapEndTime,
	})

	// SPAWN_MANAGER
	managerSeed := c.random.Int63()
	mgr, err := c.managerFactory(c, c.config.StopTime, c.config.BootstrapEndTime, managerSeed)
	if err != nil || mgr == nil {
		panic(fmt.Sprintf("controller: manager creation failed: %v", err))
	}
	c.mgr = mgr

	// REGISTER_HOSTS (two phases, per hostreg.Pipeline.Register)
	pipeline := &hostreg.Pipeline{
		Graph:            c.graph,
		Assignment:       c.ipAssignment,
		Manager:          c.mgr,
		Resolver:         c.resolver,
		GlobalOpts:       *c.config,
		OnHostRegistered: c.dns.Register,
	}
	if err := pipeline.Register(c.config); err != nil {
		logrus.Errorf("controller: host registration failed: %v", err)
		c.free()
		return ExitFatal
	}

	// COMPUTE_ROUTING
	routingInfo, err := routing.New(c.graph, c.ipAssignment, c.config.UseShortestPath)
	if err != nil {
		logrus.Errorf("controller: computing routing: %v", err)
		c.free()
		return ExitFatal
	}
	c.routingInfo = routingInfo

	// RELEASE_GRAPH
	c.graph = nil

	// CONFIGURE_LOGGING
	if c.config.LogLevel != "trace" {
		c.enableBufferedLogging()
	}

	// RUN
	runErr := c.mgr.Run()

	// RESTORE_LOGGING
	if c.bufferedLogging {
		c.disableBufferedLogging()
	}

	if runErr != nil {
		logrus.Errorf("controller: manager run failed: %v", runErr)
	}

	// TEARDOWN
	exitCode := c.mgr.Free()
	c.free()
	return exitCode
}

// free releases owned resources in reverse order of acquisition and logs
// a warning if the graph survived to teardown — that only happens on the
// error paths in Run, indicating an aborted run (spec.md §4.4 free()).
func (c *Controller) free() {
	c.routingInfo = nil
	c.mgr = nil
	c.dns = nil
	c.ipAssignment = nil
	if c.graph != nil {
		logrus.Warnf("controller: graph was not released before teardown (aborted run)")
		c.graph = nil
	}
	c.random = nil
}

// CurrentWindow implements manager.Controller.
func (c *Controller) CurrentWindow() (start, end netsim.SimulationTime) {
	return c.timeWindow.Window()
}

// ManagerFinishedCurrentRound implements manager.Controller and spec.md
// §4.1. When a stop has been requested (spec.md §9), it sets the
// simulation end time to 0 first, so the window computed by this call
// collapses and this call reports no continuation.
func (c *Controller) ManagerFinishedCurrentRound(minNextEventTime netsim.SimulationTime) (start, end netsim.SimulationTime, cont bool) {
	if c.stopRequested.Load() {
		c.timeWindow.SetEndTime(0)
	}
	start, end, cont = c.timeWindow.ManagerFinishedCurrentRound(minNextEventTime)
	if c.onRoundFinished != nil {
		c.onRoundFinished(start, end, minNextEventTime)
	}
	return start, end, cont
}

// UpdateMinTimeJump is called by the topology layer when shorter paths
// become known (spec.md §4.1).
func (c *Controller) UpdateMinTimeJump(observedMs uint64) {
	c.timeWindow.UpdateMinTimeJump(observedMs)
}

// GetLatency implements manager.Controller.
func (c *Controller) GetLatency(src, dst net.IP) float64 {
	return c.routingInfo.GetLatency(src, dst)
}

// GetReliability implements manager.Controller.
func (c *Controller) GetReliability(src, dst net.IP) float64 {
	return c.routingInfo.GetReliability(src, dst)
}

// IsRoutable implements manager.Controller.
func (c *Controller) IsRoutable(src, dst net.IP) bool {
	return c.routingInfo.IsRoutable(src, dst)
}

// IncrementPacketCount implements manager.Controller.
func (c *Controller) IncrementPacketCount(src, dst net.IP) {
	c.routingInfo.IncrementPacketCount(src, dst)
}

// LookupByName implements manager.Controller.
func (c *Controller) LookupByName(name string) (net.IP, bool) {
	return c.dns.LookupByName(name)
}

// LookupByAddr implements manager.Controller.
func (c *Controller) LookupByAddr(addr net.IP) (string, bool) {
	return c.dns.LookupByAddr(addr)
}

// Elapsed returns wall-clock time since the controller was created.
func (c *Controller) Elapsed() time.Duration {
	return time.Since(c.runTimer)
}
