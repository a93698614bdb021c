package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TaskStatus is a task's lifecycle status
type TaskStatus = string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	// TaskStatusCompleted is terminal, no outgoing transitions
	TaskStatusCompleted TaskStatus = "COMPLETED"
)

// TaskPriority orders tasks by urgency
type TaskPriority = string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// Task is the task model
type Task struct {
	bun.BaseModel `bun:"table:tasks,alias:tsk"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Title         string       `bun:"title,notnull" json:"title,omitempty"`
	Description   string       `bun:"description" json:"description,omitempty"`
	Status        TaskStatus   `bun:"status,notnull,default:'TODO'" json:"status,omitempty"`
	Priority      TaskPriority `bun:"priority,notnull,default:'MEDIUM'" json:"priority,omitempty"`
	Assignee      string       `bun:"assignee" json:"assignee,omitempty"`
	DueDate       *time.Time   `bun:"due_date,nullzero" json:"due_date,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt     *time.Time   `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Subtask belongs to a task and shares its field set
type Subtask struct {
	bun.BaseModel `bun:"table:subtasks,alias:stk"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	TaskID        uuid.UUID    `bun:"task_id,notnull,type:uuid" json:"task_id,omitempty"`
	Task          *Task        `bun:"rel:belongs-to,join:task_id=id" json:"task,omitempty"`
	Title         string       `bun:"title,notnull" json:"title,omitempty"`
	Description   string       `bun:"description" json:"description,omitempty"`
	Status        TaskStatus   `bun:"status,notnull,default:'TODO'" json:"status,omitempty"`
	Priority      TaskPriority `bun:"priority,notnull,default:'MEDIUM'" json:"priority,omitempty"`
	Assignee      string       `bun:"assignee" json:"assignee,omitempty"`
	DueDate       *time.Time   `bun:"due_date,nullzero" json:"due_date,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}
