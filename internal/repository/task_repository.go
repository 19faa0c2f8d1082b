package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/backoffice-suite/internal/domain"
)

// TaskFilter captures user task listing parameters.
type TaskFilter struct {
	Status *domain.TaskStatus
	// SortBy is one of created_at, due_date, -created_at, -due_date.
	SortBy string
}

// TaskRepository persists per-user tasks; every lookup is scoped to the
// owning user.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) error
	GetForUser(ctx context.Context, id, userID string) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, userID string) error
	ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, error)
}

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository instantiates repository.
func NewTaskRepository(pool *pgxpool.Pool) TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) error {
	const query = `
        INSERT INTO tasks (title, description, status, user_id, due_date)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.Status, task.UserID, task.DueDate,
	).Scan(&task.ID, &task.CreatedAt)
}

func (r *taskRepository) GetForUser(ctx context.Context, id, userID string) (*domain.Task, error) {
	const query = `
        SELECT id, title, description, status, user_id, created_at, due_date
        FROM tasks WHERE id=$1 AND user_id=$2`
	var t domain.Task
	if err := r.pool.QueryRow(ctx, query, id, userID).Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.DueDate,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	const query = `
        UPDATE tasks SET title=$1, description=$2, status=$3, due_date=$4
        WHERE id=$5 AND user_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		task.Title, task.Description, task.Status, task.DueDate, task.ID, task.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, id, userID string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

var taskSortColumns = map[string]string{
	"created_at":  "created_at ASC",
	"-created_at": "created_at DESC",
	"due_date":    "due_date ASC",
	"-due_date":   "due_date DESC",
}

func (r *taskRepository) ListByUser(ctx context.Context, userID string, filter TaskFilter) ([]domain.Task, error) {
	query := `
        SELECT id, title, description, status, user_id, created_at, due_date
        FROM tasks WHERE user_id=$1`
	args := []any{userID}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		query += ` AND status=$2`
	}

	orderBy, ok := taskSortColumns[filter.SortBy]
	if !ok {
		orderBy = "created_at DESC"
	}
	query += ` ORDER BY ` + orderBy

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.UserID, &t.CreatedAt, &t.DueDate); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}
