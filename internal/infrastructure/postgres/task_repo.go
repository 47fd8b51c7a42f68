package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

const taskColumns = `id, user_id, title, description, status, priority, tags, due_date, created_at, updated_at`

type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	query := `
		INSERT INTO tasks (id, user_id, title, description, status, priority, tags, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		uuid.NewString(),
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Tags,
		task.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`

	return scanTask(r.pool.QueryRow(ctx, query, taskID, userID))
}

// buildFilter turns a ListTasksInput into a WHERE clause and its args.
// Shared between List's page query and its count query so the two can
// never disagree.
func buildFilter(input repository.ListTasksInput) (string, []any) {
	where := []string{"user_id = $1"}
	args := []any{input.UserID}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.Priority != "" {
		args = append(args, input.Priority)
		where = append(where, fmt.Sprintf("priority = $%d", len(args)))
	}
	if len(input.Tags) > 0 {
		args = append(args, input.Tags)
		where = append(where, fmt.Sprintf("tags @> $%d", len(args)))
	}
	if input.Search != "" {
		args = append(args, "%"+input.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	return strings.Join(where, " AND "), args
}

func (r *TaskRepository) List(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, int, error) {
	filter, args := buildFilter(input)

	var total int
	countQuery := `SELECT COUNT(*) FROM tasks WHERE ` + filter
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	args = append(args, input.Limit, input.Offset)
	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`,
		filter, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, err
		}
		tasks = append(tasks, t)
	}
	return tasks, total, rows.Err()
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	// Plain overwrite, no version column: concurrent writers race and
	// the last one wins.
	query := `
		UPDATE tasks
		SET    title       = $3,
		       description = $4,
		       status      = $5,
		       priority    = $6,
		       tags        = $7,
		       due_date    = $8,
		       updated_at  = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns

	row := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.Tags,
		task.DueDate,
	)
	return scanTask(row)
}

func (r *TaskRepository) Delete(ctx context.Context, taskID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, userID string) (map[domain.Status]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE user_id = $1 GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Status]int)
	for rows.Next() {
		var status domain.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&t.Tags, &t.DueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}
	return &t, nil
}
