package workflows

import "fmt"

// StateMachine enforces status transitions from a fixed table
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a state machine. A status mapped to no successor is terminal.
func NewStateMachine(transitions map[string][]string) *StateMachine {
	return &StateMachine{allowedTransitions: transitions}
}

// Knows reports whether status appears in the table
func (sm *StateMachine) Knows(status string) bool {
	_, ok := sm.allowedTransitions[status]
	return ok
}

// IsTerminal reports whether status is known and has no successor
func (sm *StateMachine) IsTerminal(status string) bool {
	next, ok := sm.allowedTransitions[status]
	return ok && len(next) == 0
}

// CanTransition checks if a status transition is allowed. Staying put is always allowed.
func (sm *StateMachine) CanTransition(from, to string) bool {
	if from == to {
		return sm.Knows(from)
	}
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// Transition returns to when the move is allowed
func (sm *StateMachine) Transition(from, to string) (string, error) {
	if !sm.CanTransition(from, to) {
		return from, fmt.Errorf("transition %q -> %q is not allowed", from, to)
	}
	return to, nil
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}
