package task

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

// Stable machine-readable codes surfaced in the response envelope.
const (
	TextCodeTaskNotFound  = "TASK_NOT_FOUND"
	TextCodeTitleRequired = "TITLE_REQUIRED"
	TextCodeNoValidFields = "NO_VALID_FIELDS"
)

// ErrTaskNotFound is returned for unknown task ids.
var ErrTaskNotFound = goerrors.New("task not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeTaskNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrTitleRequired rejects blank or whitespace-only titles.
var ErrTitleRequired = goerrors.New("title is required", goerrors.CategoryValidation).
	WithTextCode(TextCodeTitleRequired).
	WithCode(goerrors.CodeBadRequest)

// ErrNoValidFields is returned when an update patch carries no recognized field.
var ErrNoValidFields = goerrors.New("no valid fields to update", goerrors.CategoryValidation).
	WithTextCode(TextCodeNoValidFields).
	WithCode(goerrors.CodeBadRequest)

// Service applies task operations against the store, running every
// multi-statement sequence inside a transaction.
type Service struct {
	repo repository.Manager
	sm   *StateMachine
}

// NewService wires the task operations against the given repositories.
func NewService(repo repository.Manager) *Service {
	return &Service{
		repo: repo,
		sm:   NewStateMachine(),
	}
}

// List returns every task, newest first.
func (s *Service) List(ctx context.Context) ([]*model.Task, error) {
	records, err := s.repo.Tasks().List(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list tasks")
	}
	return records, nil
}

// Get returns a task by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	record, err := s.repo.Tasks().GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve task")
	}
	return record, nil
}

// Create persists a new task. Status defaults to TODO and priority to
// MEDIUM when unspecified.
func (s *Service) Create(ctx context.Context, record *model.Task) (*model.Task, error) {
	if strings.TrimSpace(record.Title) == "" {
		return nil, ErrTitleRequired
	}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = s.repo.Tasks().CreateTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create task")
	}
	return record, nil
}

// Update applies a validated patch atomically. A status change must be
// permitted by the transition table given the task's current status.
func (s *Service) Update(ctx context.Context, id uuid.UUID, patch repository.TaskPatch) (*model.Task, error) {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Empty() {
		return nil, ErrNoValidFields
	}

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleRequired
	}

	if patch.Status != nil {
		if err := s.sm.Validate(existing.Status, *patch.Status); err != nil {
			return nil, err
		}
	}

	err = s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.repo.Tasks().UpdateTx(ctx, tx, id, patch)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrTaskNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update task")
	}

	return s.Get(ctx, id)
}

// Delete removes a task by id.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return s.repo.Tasks().DeleteTx(ctx, tx, id)
	})
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrTaskNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete task")
	}
	return nil
}

// CreateSubtask persists a subtask under an existing parent task.
func (s *Service) CreateSubtask(ctx context.Context, taskID uuid.UUID, record *model.Subtask) (*model.Subtask, error) {
	if strings.TrimSpace(record.Title) == "" {
		return nil, ErrTitleRequired
	}

	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}
	record.TaskID = taskID

	err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		record, err = s.repo.Tasks().CreateSubtaskTx(ctx, tx, record)
		return err
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create subtask")
	}
	return record, nil
}

// ListSubtasks returns a task's subtasks, newest first.
func (s *Service) ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]*model.Subtask, error) {
	if _, err := s.Get(ctx, taskID); err != nil {
		return nil, err
	}

	records, err := s.repo.Tasks().ListSubtasks(ctx, taskID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list subtasks")
	}
	return records, nil
}
