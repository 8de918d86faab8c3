package submission

import (
	"fmt"
	"slices"
)

// State is the one value that describes where a submission is
type State uint8

// States
const (
	StateIdle State = iota
	StateFilling
	StateBlocked
	StateSubmitting
	StatePendingVerification
	StateNoPending
	StateVerifying
	StateSending
	StateSuccess
	StateFailed
	StateCanceled
)

var stateNames = [...]string{
	StateIdle:                "idle",
	StateFilling:             "filling",
	StateBlocked:             "blocked",
	StateSubmitting:          "submitting",
	StatePendingVerification: "pending_verification",
	StateNoPending:           "no_pending",
	StateVerifying:           "verifying",
	StateSending:             "sending",
	StateSuccess:             "success",
	StateFailed:              "failed",
	StateCanceled:            "canceled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Terminal reports whether the state ends an attempt
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailed || s == StateCanceled
}

// transitions lists every legal edge; anything else is a programming error
var transitions = map[State][]State{
	StateIdle:                {StateFilling, StatePendingVerification, StateNoPending},
	StateFilling:             {StateFilling, StateBlocked, StateSubmitting, StateSuccess, StatePendingVerification, StateNoPending},
	StateBlocked:             {StateFilling, StateBlocked, StateSubmitting, StateSuccess},
	StateSubmitting:          {StateFilling, StatePendingVerification},
	StatePendingVerification: {StatePendingVerification, StateVerifying, StateSending, StateNoPending, StateFilling},
	StateNoPending:           {StateFilling, StatePendingVerification, StateNoPending},
	StateVerifying:           {StateVerifying, StatePendingVerification, StateSending, StateNoPending},
	StateSending:             {StateSending, StateSuccess, StateFailed, StateCanceled, StatePendingVerification, StateNoPending},
	StateSuccess:             {StateFilling, StatePendingVerification, StateNoPending},
	StateFailed:              {StateVerifying, StatePendingVerification, StateNoPending, StateFilling},
	StateCanceled:            {StateVerifying, StatePendingVerification, StateNoPending, StateFilling},
}

// TransitionError is returned when an event does not apply to the current state
type TransitionError struct {
	From, To State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("submission: cannot go from %s to %s", e.From, e.To)
}

func allowed(from, to State) bool {
	return slices.Contains(transitions[from], to)
}
