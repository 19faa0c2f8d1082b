package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

// TasksService manages per-user to-do items. Every operation is scoped to
// the calling user; other users' tasks read as missing.
type TasksService struct {
	tasks repository.TaskRepository
}

// NewTasksService creates the service.
func NewTasksService(tasks repository.TaskRepository) *TasksService {
	return &TasksService{tasks: tasks}
}

// TaskCreateInput describes task creation payload.
type TaskCreateInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

// TaskUpdateInput carries only the fields the caller wants changed; nil
// fields keep their stored value.
type TaskUpdateInput struct {
	Title       *string
	Description *string
	Status      *domain.TaskStatus
	DueDate     *time.Time
}

// CreateTask adds a task owned by the caller. An omitted status defaults to
// TODO.
func (s *TasksService) CreateTask(ctx context.Context, userID string, input TaskCreateInput) (*domain.Task, error) {
	status := input.Status
	if status == "" {
		status = domain.TaskStatusTodo
	}
	if !domain.ValidTaskStatus(status) {
		return nil, apperrors.NewValidationError("status must be one of TODO, IN_PROGRESS, DONE", nil)
	}

	task := &domain.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		UserID:      userID,
		DueDate:     input.DueDate,
	}
	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns one of the caller's tasks.
func (s *TasksService) GetTask(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	task, err := s.tasks.GetForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}
	return task, nil
}

// ListTasks returns the caller's tasks filtered by status and sorted per the
// filter.
func (s *TasksService) ListTasks(ctx context.Context, userID string, filter repository.TaskFilter) ([]domain.Task, error) {
	if filter.Status != nil && !domain.ValidTaskStatus(*filter.Status) {
		return nil, apperrors.NewValidationError("status must be one of TODO, IN_PROGRESS, DONE", nil)
	}
	return s.tasks.ListByUser(ctx, userID, filter)
}

// UpdateTask partially updates one of the caller's tasks.
func (s *TasksService) UpdateTask(ctx context.Context, userID, taskID string, input TaskUpdateInput) (*domain.Task, error) {
	task, err := s.tasks.GetForUser(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}

	if input.Title != nil {
		task.Title = *input.Title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !domain.ValidTaskStatus(*input.Status) {
			return nil, apperrors.NewValidationError("status must be one of TODO, IN_PROGRESS, DONE", nil)
		}
		task.Status = *input.Status
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if err := s.tasks.Update(ctx, task); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("task", nil)
		}
		return nil, err
	}
	return task, nil
}

// DeleteTask removes one of the caller's tasks.
func (s *TasksService) DeleteTask(ctx context.Context, userID, taskID string) error {
	if err := s.tasks.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("task", nil)
		}
		return err
	}
	return nil
}
