// Package workflow is the state machine of a staged edit: edit, confirm, commit
// and, for job postings, choosing the publication scope.
package workflow

import (
	"fmt"

	"github.com/honeycarbs/scoutdesk/internal/domain"
)

type State string

const (
	StateNone           State = ""
	StateEditing        State = "editing"
	StateStaged         State = "staged"
	StateCommitting     State = "committing"
	StateScopeSelection State = "scope_selection"
	StateDone           State = "done"
)

type Event string

const (
	EventSubmit    Event = "submit"    // valid form leaves the edit step
	EventBack      Event = "back"      // confirm view returns to the edit form
	EventConfirm   Event = "confirm"   // user confirms, commit starts
	EventSucceeded Event = "succeeded" // commit wrote the row
	EventFailed    Event = "failed"    // commit aborted
	EventSaveScope Event = "save_scope"
)

var transitions = map[State]map[Event]State{
	StateNone: {
		EventSubmit: StateStaged,
	},
	StateEditing: {
		EventSubmit: StateStaged,
	},
	StateStaged: {
		EventSubmit:  StateStaged,
		EventBack:    StateEditing,
		EventConfirm: StateCommitting,
	},
	StateCommitting: {
		EventSucceeded: StateScopeSelection,
		EventFailed:    StateStaged,
	},
	StateScopeSelection: {
		EventSaveScope: StateDone,
	},
}

// Next returns the state reached from s on e or ErrInvalidTransition
func Next(s State, e Event) (State, error) {
	if next, ok := transitions[s][e]; ok {
		return next, nil
	}
	return s, fmt.Errorf("%s on %q: %w", e, s, domain.ErrInvalidTransition)
}

// Can reports whether e is legal in s
func Can(s State, e Event) bool {
	_, ok := transitions[s][e]
	return ok
}
