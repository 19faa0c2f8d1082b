package dto

import (
	"time"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// CreateTaskRequest payload; an omitted status defaults to TODO.
type CreateTaskRequest struct {
	Title       string            `json:"title" validate:"required,max=255"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	DueDate     *time.Time        `json:"due_date"`
}

// UpdateTaskRequest carries only the fields to change; absent fields are
// left untouched.
type UpdateTaskRequest struct {
	Title       *string            `json:"title" validate:"omitempty,max=255"`
	Description *string            `json:"description"`
	Status      *domain.TaskStatus `json:"status"`
	DueDate     *time.Time         `json:"due_date"`
}

// TaskResponse representation.
type TaskResponse struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      domain.TaskStatus `json:"status"`
	UserID      string            `json:"user_id"`
	CreatedAt   time.Time         `json:"created_at"`
	DueDate     *time.Time        `json:"due_date"`
}
