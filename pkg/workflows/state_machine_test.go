package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMachine() *StateMachine {
	return NewStateMachine(map[string][]string{
		"open":      {"progress", "closed"},
		"progress":  {"open", "closed"},
		"closed":    {"open"},
		"cancelled": {},
	})
}

func TestCanTransition(t *testing.T) {
	sm := newTestMachine()

	assert.True(t, sm.CanTransition("open", "progress"))
	assert.True(t, sm.CanTransition("closed", "closed"))
	assert.False(t, sm.CanTransition("closed", "progress"))
	assert.False(t, sm.CanTransition("cancelled", "open"))
	assert.False(t, sm.CanTransition("unknown", "open"))
	assert.False(t, sm.CanTransition("unknown", "unknown"))
}

func TestIsTerminal(t *testing.T) {
	sm := newTestMachine()

	assert.True(t, sm.IsTerminal("cancelled"))
	assert.False(t, sm.IsTerminal("open"))
	assert.False(t, sm.IsTerminal("unknown"))
	assert.True(t, sm.Knows("closed"))
	assert.False(t, sm.Knows("unknown"))
}

func TestTransition(t *testing.T) {
	sm := newTestMachine()

	next, err := sm.Transition("open", "closed")
	require.NoError(t, err)
	assert.Equal(t, "closed", next)

	next, err = sm.Transition("cancelled", "open")
	assert.Error(t, err)
	assert.Equal(t, "cancelled", next)
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := newTestMachine()

	assert.Equal(t, []string{"progress", "closed"}, sm.GetAllowedTransitions("open"))
	assert.Empty(t, sm.GetAllowedTransitions("cancelled"))
	assert.Empty(t, sm.GetAllowedTransitions("unknown"))
}
