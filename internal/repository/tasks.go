package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/taskforge/taskforge/internal/model"
)

// TaskPatch is the explicit field set accepted by task updates. Nil
// fields are left untouched; arbitrary keys never reach a column.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *model.TaskStatus
	Priority    *model.TaskPriority
	Assignee    *string
	DueDate     *time.Time
	ClearDue    bool
}

// Empty reports whether the patch carries no recognized field.
func (p TaskPatch) Empty() bool {
	return p.Title == nil &&
		p.Description == nil &&
		p.Status == nil &&
		p.Priority == nil &&
		p.Assignee == nil &&
		p.DueDate == nil &&
		!p.ClearDue
}

// Tasks persists task and subtask records
type Tasks interface {
	Create(ctx context.Context, record *model.Task) (*model.Task, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *model.Task) (*model.Task, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error)
	List(ctx context.Context) ([]*model.Task, error)
	UpdateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch TaskPatch) error
	DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
	CreateSubtaskTx(ctx context.Context, tx bun.IDB, record *model.Subtask) (*model.Subtask, error)
	ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]*model.Subtask, error)
}

type tasks struct {
	db *bun.DB
}

var _ Tasks = (*tasks)(nil)

// NewTasksRepository builds the bun-backed Tasks store.
func NewTasksRepository(db *bun.DB) Tasks {
	return &tasks{db: db}
}

func (r *tasks) Create(ctx context.Context, record *model.Task) (*model.Task, error) {
	return r.CreateTx(ctx, r.db, record)
}

func (r *tasks) CreateTx(ctx context.Context, tx bun.IDB, record *model.Task) (*model.Task, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = model.TaskStatusTodo
	}
	if record.Priority == "" {
		record.Priority = model.TaskPriorityMedium
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *tasks) GetByID(ctx context.Context, id uuid.UUID) (*model.Task, error) {
	record := &model.Task{}
	err := r.db.NewSelect().Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *tasks) List(ctx context.Context) ([]*model.Task, error) {
	var records []*model.Task
	err := r.db.NewSelect().Model(&records).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *tasks) UpdateTx(ctx context.Context, tx bun.IDB, id uuid.UUID, patch TaskPatch) error {
	q := tx.NewUpdate().Model((*model.Task)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id)

	if patch.Title != nil {
		q.Set("title = ?", *patch.Title)
	}
	if patch.Description != nil {
		q.Set("description = ?", *patch.Description)
	}
	if patch.Status != nil {
		q.Set("status = ?", *patch.Status)
	}
	if patch.Priority != nil {
		q.Set("priority = ?", *patch.Priority)
	}
	if patch.Assignee != nil {
		q.Set("assignee = ?", *patch.Assignee)
	}
	if patch.DueDate != nil {
		q.Set("due_date = ?", *patch.DueDate)
	} else if patch.ClearDue {
		q.Set("due_date = NULL")
	}

	res, err := q.Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *tasks) DeleteTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	res, err := tx.NewDelete().Model((*model.Task)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *tasks) CreateSubtaskTx(ctx context.Context, tx bun.IDB, record *model.Subtask) (*model.Subtask, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Status == "" {
		record.Status = model.TaskStatusTodo
	}
	if record.Priority == "" {
		record.Priority = model.TaskPriorityMedium
	}
	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		return nil, err
	}
	return record, nil
}

func (r *tasks) ListSubtasks(ctx context.Context, taskID uuid.UUID) ([]*model.Subtask, error) {
	var records []*model.Subtask
	err := r.db.NewSelect().Model(&records).
		Where("?TableAlias.task_id = ?", taskID).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}
