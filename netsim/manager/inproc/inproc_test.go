package inproc

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowsim/controller/netsim"
)

// fakeController is a minimal manager.Controller stub that reports
// continuation after the first round and no continuation after the
// second.
type fakeController struct {
	windowStart, windowEnd netsim.SimulationTime
	rounds                 int
	minNextSeen            []netsim.SimulationTime
}

func (c *fakeController) CurrentWindow() (netsim.SimulationTime, netsim.SimulationTime) {
	return c.windowStart, c.windowEnd
}

func (c *fakeController) ManagerFinishedCurrentRound(minNext netsim.SimulationTime) (netsim.SimulationTime, netsim.SimulationTime, bool) {
	c.rounds++
	c.minNextSeen = append(c.minNextSeen, minNext)
	return 0, 0, c.rounds < 2
}

func (c *fakeController) GetLatency(src, dst net.IP) float64       { return 0 }
func (c *fakeController) GetReliability(src, dst net.IP) float64   { return 1 }
func (c *fakeController) IsRoutable(src, dst net.IP) bool          { return true }
func (c *fakeController) IncrementPacketCount(src, dst net.IP)     {}
func (c *fakeController) LookupByName(name string) (net.IP, bool)  { return nil, false }
func (c *fakeController) LookupByAddr(addr net.IP) (string, bool)  { return "", false }

func TestNew_ReturnsManagerImplementingInterface(t *testing.T) {
	ctrl := &fakeController{windowEnd: 1000}
	mgr, err := New(ctrl, 1000, 0, 42)
	require.NoError(t, err)
	require.NotNil(t, mgr)
}

func TestAddNewVirtualHost_RejectsDuplicate(t *testing.T) {
	ctrl := &fakeController{windowEnd: 1000}
	m := &Manager{ctrl: ctrl, endTime: 1000, hosts: make(map[string]*hostState)}
	require.NoError(t, m.AddNewVirtualHost(netsim.HostParameters{Hostname: "h1"}))
	assert.Error(t, m.AddNewVirtualHost(netsim.HostParameters{Hostname: "h1"}))
}

func TestAddNewVirtualProcess_UnknownHostFails(t *testing.T) {
	ctrl := &fakeController{windowEnd: 1000}
	m := &Manager{ctrl: ctrl, endTime: 1000, hosts: make(map[string]*hostState)}
	err := m.AddNewVirtualProcess("ghost", netsim.ProcessDescriptor{})
	assert.Error(t, err)
}

func TestRun_DrivesEventsWithinWindowAndStops(t *testing.T) {
	ctrl := &fakeController{windowEnd: 100}
	m := &Manager{ctrl: ctrl, endTime: 1000, hosts: make(map[string]*hostState)}
	require.NoError(t, m.AddNewVirtualHost(netsim.HostParameters{Hostname: "h1"}))
	require.NoError(t, m.AddNewVirtualProcess("h1", netsim.ProcessDescriptor{
		PluginPath: "/bin/x", StartTime: 10, StopTime: 20,
	}))

	require.NoError(t, m.Run())
	assert.Equal(t, 0, m.events.Len())
	assert.Equal(t, 2, ctrl.rounds)
}

func TestFree_ReturnsExitCode(t *testing.T) {
	m := &Manager{exitCode: 0}
	assert.Equal(t, 0, m.Free())
}
