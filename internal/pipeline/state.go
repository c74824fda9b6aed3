package pipeline

import "fmt"

// RowState is the position of a row in the processing state machine.
type RowState string

const (
	StatePending     RowState = "pending"
	StateMatchFailed RowState = "match_failed"
	StateReady       RowState = "ready"
	StateSimulated   RowState = "simulated"
	StateUploaded    RowState = "uploaded"
	StateFailed      RowState = "failed"
	StateSkipped     RowState = "skipped"
)

var allowedTransitions = map[RowState]map[RowState]bool{
	"": {
		StatePending: true,
		StateSkipped: true,
	},
	StatePending: {
		StateMatchFailed: true,
		StateReady:       true,
		StateSkipped:     true, // already published, skip_completed
	},
	StateReady: {
		StateSimulated: true,
		StateUploaded:  true,
		StateFailed:    true,
	},
}

// CanTransition reports whether a row may move from one state to another.
func CanTransition(from, to RowState) bool {
	return allowedTransitions[from][to]
}

// Terminal reports whether no further transition leaves s.
func (s RowState) Terminal() bool {
	switch s {
	case StateMatchFailed, StateSimulated, StateUploaded, StateFailed, StateSkipped:
		return true
	}
	return false
}

// rowMachine tracks one row through its transitions.
type rowMachine struct {
	state RowState
}

// to moves the row; an illegal move is a bug in the step function.
func (m *rowMachine) to(next RowState) {
	if !CanTransition(m.state, next) {
		panic(fmt.Sprintf("invalid row transition: %q -> %q", m.state, next))
	}
	m.state = next
}
