package netsim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulationTime_IsBounded(t *testing.T) {
	assert.True(t, SimulationTime(0).IsBounded())
	assert.True(t, SimulationTime(1000).IsBounded())
	assert.False(t, Unbounded.IsBounded())
}

func TestDefaultMinTimeJump_IsTenMilliseconds(t *testing.T) {
	assert.Equal(t, 10*Millisecond, DefaultMinTimeJump)
}
