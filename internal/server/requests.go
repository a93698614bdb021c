package server

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/taskforge/taskforge/internal/model"
	"github.com/taskforge/taskforge/internal/repository"
)

var (
	taskStatusRule   = validation.In(model.TaskStatusTodo, model.TaskStatusInProgress, model.TaskStatusBlocked, model.TaskStatusCompleted)
	taskPriorityRule = validation.In(model.TaskPriorityLow, model.TaskPriorityMedium, model.TaskPriorityHigh)
)

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Validate will run validation rules
func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// LogoutRequest payload. The token is optional; omitting it simply ends
// the call without revoking anything.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// ForgotPasswordRequest payload
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r ForgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ResetPasswordRequest payload
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ResetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 72)),
	)
}

// UpdateProfileRequest payload; nil fields are left untouched.
type UpdateProfileRequest struct {
	Name         *string `json:"name"`
	ProfilePhoto *string `json:"profile_photo"`
}

// Patch converts the request into the repository patch.
func (r UpdateProfileRequest) Patch() repository.ProfilePatch {
	return repository.ProfilePatch{
		Name:         r.Name,
		ProfilePhoto: r.ProfilePhoto,
	}
}

// CreateTaskRequest payload
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate will run validation rules
func (r CreateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, taskStatusRule),
		validation.Field(&r.Priority, taskPriorityRule),
	)
}

// Model converts the request into a task record.
func (r CreateTaskRequest) Model() *model.Task {
	return &model.Task{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Assignee:    r.Assignee,
		DueDate:     r.DueDate,
	}
}

// UpdateTaskRequest payload; nil fields are left untouched. Unknown JSON
// keys are discarded here and never reach a column.
type UpdateTaskRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Status      *string    `json:"status"`
	Priority    *string    `json:"priority"`
	Assignee    *string    `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
	// ClearDueDate removes the due date; a nil DueDate alone means
	// "leave it unchanged".
	ClearDueDate bool `json:"clear_due_date"`
}

// Validate will run validation rules
func (r UpdateTaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, taskStatusRule),
		validation.Field(&r.Priority, taskPriorityRule),
	)
}

// Patch converts the request into the repository patch.
func (r UpdateTaskRequest) Patch() repository.TaskPatch {
	return repository.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Assignee:    r.Assignee,
		DueDate:     r.DueDate,
		ClearDue:    r.ClearDueDate,
	}
}

// CreateSubtaskRequest payload
type CreateSubtaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	DueDate     *time.Time `json:"due_date"`
}

// Validate will run validation rules
func (r CreateSubtaskRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, taskStatusRule),
		validation.Field(&r.Priority, taskPriorityRule),
	)
}

// Model converts the request into a subtask record.
func (r CreateSubtaskRequest) Model() *model.Subtask {
	return &model.Subtask{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		Assignee:    r.Assignee,
		DueDate:     r.DueDate,
	}
}

// CreateProjectRequest payload
type CreateProjectRequest struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// Validate will run validation rules
func (r CreateProjectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

// CreateOrganizationRequest payload
type CreateOrganizationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Validate will run validation rules
func (r CreateOrganizationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
	)
}

// CreateTeamRequest payload
type CreateTeamRequest struct {
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
}

// Validate will run validation rules
func (r CreateTeamRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.OrganizationID, validation.Required, is.UUID),
		validation.Field(&r.Name, validation.Required),
	)
}
