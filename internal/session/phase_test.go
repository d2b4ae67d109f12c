package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PhaseInit, PhaseProbed))
	assert.True(t, CanTransition(PhaseRunningMode, PhaseRunningMode))
	assert.True(t, CanTransition(PhaseRunningMode, PhaseDone))
	assert.True(t, CanTransition(PhaseTargetsSelected, PhaseCancelled))
	assert.True(t, CanTransition(PhaseConfirmed, PhaseAborted))

	assert.False(t, CanTransition(PhaseInit, PhaseBuilt))
	assert.False(t, CanTransition(PhaseBuilt, PhaseDone))
	assert.False(t, CanTransition(PhaseDone, PhaseCancelled))
	assert.False(t, CanTransition(PhaseAborted, PhaseInit))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "running-mode", PhaseRunningMode.String())
	assert.Equal(t, "phase(42)", Phase(42).String())
	assert.True(t, PhaseCancelled.Terminal())
	assert.False(t, PhaseBuilt.Terminal())
}
