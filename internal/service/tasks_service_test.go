package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/backoffice-suite/internal/domain"
	"github.com/spec-kit/backoffice-suite/internal/repository"
)

type stubTaskRepo struct {
	tasks map[string]*domain.Task
	next  int
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task), next: 1}
}

func (r *stubTaskRepo) Create(_ context.Context, task *domain.Task) error {
	task.ID = "task-" + string(rune('0'+r.next))
	r.next++
	task.CreatedAt = time.Now()
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *stubTaskRepo) GetForUser(_ context.Context, id, userID string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	clone := *task
	return &clone, nil
}

func (r *stubTaskRepo) Update(_ context.Context, task *domain.Task) error {
	stored, ok := r.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return pgx.ErrNoRows
	}
	clone := *task
	r.tasks[task.ID] = &clone
	return nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, userID string) error {
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return pgx.ErrNoRows
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) ListByUser(_ context.Context, userID string, _ repository.TaskFilter) ([]domain.Task, error) {
	var out []domain.Task
	for _, t := range r.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func strPtr(s string) *string { return &s }

func statusPtr(s domain.TaskStatus) *domain.TaskStatus { return &s }

func TestCreateTaskDefaultsToTodo(t *testing.T) {
	svc := NewTasksService(newStubTaskRepo())

	task, err := svc.CreateTask(context.Background(), "user-1", TaskCreateInput{Title: "water plants"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if task.Status != domain.TaskStatusTodo {
		t.Fatalf("status = %s, want TODO", task.Status)
	}
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	svc := NewTasksService(newStubTaskRepo())

	_, err := svc.CreateTask(context.Background(), "user-1", TaskCreateInput{
		Title:  "water plants",
		Status: "BLOCKED",
	})
	expectCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateTaskKeepsUnsetFields(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTasksService(repo)
	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)

	task, err := svc.CreateTask(context.Background(), "user-1", TaskCreateInput{
		Title:       "water plants",
		Description: "the ones on the balcony",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := svc.UpdateTask(context.Background(), "user-1", task.ID, TaskUpdateInput{
		Status: statusPtr(domain.TaskStatusDone),
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Status != domain.TaskStatusDone {
		t.Fatalf("status = %s, want DONE", updated.Status)
	}
	if updated.Title != "water plants" || updated.Description != "the ones on the balcony" {
		t.Fatalf("unset fields must keep stored values, got %+v", updated)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatal("due date must survive a partial update")
	}
}

func TestUpdateTaskRejectsUnknownStatus(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTasksService(repo)

	task, err := svc.CreateTask(context.Background(), "user-1", TaskCreateInput{Title: "water plants"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.UpdateTask(context.Background(), "user-1", task.ID, TaskUpdateInput{
		Status: statusPtr("BLOCKED"),
	})
	expectCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateUnknownTask(t *testing.T) {
	svc := NewTasksService(newStubTaskRepo())

	_, err := svc.UpdateTask(context.Background(), "user-1", "missing", TaskUpdateInput{
		Title: strPtr("renamed"),
	})
	expectCode(t, err, "NOT_FOUND")
}

func TestOtherUsersTaskReadsAsMissing(t *testing.T) {
	repo := newStubTaskRepo()
	svc := NewTasksService(repo)

	task, err := svc.CreateTask(context.Background(), "user-1", TaskCreateInput{Title: "water plants"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	_, err = svc.GetTask(context.Background(), "user-2", task.ID)
	expectCode(t, err, "NOT_FOUND")

	err = svc.DeleteTask(context.Background(), "user-2", task.ID)
	expectCode(t, err, "NOT_FOUND")
}

func TestListTasksRejectsUnknownStatusFilter(t *testing.T) {
	svc := NewTasksService(newStubTaskRepo())

	bad := domain.TaskStatus("BLOCKED")
	_, err := svc.ListTasks(context.Background(), "user-1", repository.TaskFilter{Status: &bad})
	expectCode(t, err, "VALIDATION_FAILED")
}
