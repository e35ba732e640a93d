package timewindow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shadowsim/controller/netsim"
)

func TestNew_SingleWorkerRunsWholeSpanInOneRound(t *testing.T) {
	e := New(Config{Workers: 0, EndTime: 5000})
	start, end := e.Window()
	assert.Equal(t, netsim.SimulationTime(0), start)
	assert.Equal(t, netsim.SimulationTime(5000), end)
}

func TestNew_MultiWorkerStartsWithOneMinJump(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: netsim.Unbounded})
	start, end := e.Window()
	assert.Equal(t, netsim.SimulationTime(0), start)
	assert.Equal(t, netsim.DefaultMinTimeJump, end)
}

func TestNew_InitialWindowClampedToEndTime(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: 1 * netsim.Millisecond})
	_, end := e.Window()
	assert.Equal(t, netsim.SimulationTime(1*netsim.Millisecond), end)
}

func TestGetMinTimeJump_RaisedByConfigFloor(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: netsim.Unbounded, MinJumpTimeConfig: 50 * netsim.Millisecond})
	assert.Equal(t, 50*netsim.Millisecond, e.GetMinTimeJump())
}

func TestManagerFinishedCurrentRound_AdvancesWindow(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: 1000 * netsim.Millisecond})
	start, end, cont := e.ManagerFinishedCurrentRound(10 * netsim.Millisecond)
	assert.Equal(t, 10*netsim.Millisecond, start)
	assert.Equal(t, 10*netsim.Millisecond+netsim.DefaultMinTimeJump, end)
	assert.True(t, cont)
}

func TestManagerFinishedCurrentRound_StopsWhenWindowCollapses(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: 10 * netsim.Millisecond})
	_, _, cont := e.ManagerFinishedCurrentRound(10 * netsim.Millisecond)
	assert.False(t, cont)
}

// TestUpdateMinTimeJump_MonotonicShrinkNeverResets pins the Open
// Question decision from spec.md §9: once nextMinJumpTime has been
// promoted into minJumpTime, it keeps shrinking for the rest of the run
// rather than resetting back to the configured floor.
func TestUpdateMinTimeJump_MonotonicShrinkNeverResets(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: 10000 * netsim.Millisecond})

	e.UpdateMinTimeJump(5) // observed 5ms path, shrinks below the 10ms default
	_, end, _ := e.ManagerFinishedCurrentRound(0)
	assert.Equal(t, 5*netsim.Millisecond, end)
	assert.Equal(t, 5*netsim.Millisecond, e.GetMinTimeJump())

	// A later, larger observation must not widen the jump back up —
	// nextMinJumpTime only ever shrinks, so the next round still uses 5ms.
	e.UpdateMinTimeJump(8)
	assert.Equal(t, 5*netsim.Millisecond, e.GetMinTimeJump())
	_, endMid, _ := e.ManagerFinishedCurrentRound(end)
	assert.Equal(t, end+5*netsim.Millisecond, endMid)

	// A smaller observation still shrinks it; minJumpTime only moves on
	// the next round boundary.
	e.UpdateMinTimeJump(2)
	_, end2, _ := e.ManagerFinishedCurrentRound(endMid)
	assert.Equal(t, endMid+2*netsim.Millisecond, end2)
}

func TestSetEndTime_ForcesWindowCollapseOnNextRound(t *testing.T) {
	e := New(Config{Workers: 4, EndTime: 10000 * netsim.Millisecond})
	e.SetEndTime(5 * netsim.Millisecond)
	_, _, cont := e.ManagerFinishedCurrentRound(5 * netsim.Millisecond)
	assert.False(t, cont)
}

func TestBootstrapEndTime_ReturnsConfiguredValue(t *testing.T) {
	e := New(Config{Workers: 0, EndTime: 1000, BootstrapEndTime: 200})
	assert.Equal(t, netsim.SimulationTime(200), e.BootstrapEndTime())
}
