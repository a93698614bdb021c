package task

import (
	goerrors "github.com/goliatone/go-errors"

	"github.com/taskforge/taskforge/internal/model"
)

const (
	// TextCodeInvalidTransition is the stable code for rejected status changes.
	TextCodeInvalidTransition = "INVALID_TRANSITION"
)

// ErrInvalidTransition is returned when a requested status change is not allowed.
var ErrInvalidTransition = goerrors.New("invalid status transition", goerrors.CategoryValidation).
	WithTextCode(TextCodeInvalidTransition).
	WithCode(goerrors.CodeBadRequest)

// StateMachine enforces the legal task status transitions:
//
//	TODO        -> IN_PROGRESS
//	IN_PROGRESS -> COMPLETED, BLOCKED
//	BLOCKED     -> IN_PROGRESS
//	COMPLETED   -> (terminal)
type StateMachine struct {
	transitions map[model.TaskStatus]map[model.TaskStatus]struct{}
}

// NewStateMachine returns the default task lifecycle.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[model.TaskStatus]map[model.TaskStatus]struct{}{
			model.TaskStatusTodo: {
				model.TaskStatusInProgress: {},
			},
			model.TaskStatusInProgress: {
				model.TaskStatusCompleted: {},
				model.TaskStatusBlocked:   {},
			},
			model.TaskStatusBlocked: {
				model.TaskStatusInProgress: {},
			},
			model.TaskStatusCompleted: {},
		},
	}
}

// CanTransition reports whether from -> to is in the transition table.
func (sm *StateMachine) CanTransition(from, to model.TaskStatus) bool {
	if allowed, ok := sm.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

// Validate returns ErrInvalidTransition unless from -> to is permitted.
func (sm *StateMachine) Validate(from, to model.TaskStatus) error {
	if from == to {
		return nil
	}
	if !sm.CanTransition(from, to) {
		return invalidTransition(from, to)
	}
	return nil
}

// invalidTransition attaches metadata to a clone of the sentinel. The
// sentinel itself stays immutable; concurrent rejections must never
// share a metadata map. The clone unwraps to ErrInvalidTransition so
// errors.Is keeps matching.
func invalidTransition(from, to model.TaskStatus) error {
	clone := ErrInvalidTransition.Clone()
	if clone == nil {
		return ErrInvalidTransition
	}
	clone.Source = ErrInvalidTransition
	return clone.WithMetadata(map[string]any{
		"from": from,
		"to":   to,
	})
}
