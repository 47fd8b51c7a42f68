package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, status, priority, tags, due_date, created_at, updated_at`

func (r *TaskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	now := time.Now().UTC()
	created := *task
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	tags, err := json.Marshal(created.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, description, status, priority, tags, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.UserID, created.Title, created.Description,
		created.Status, created.Priority, string(tags), nullTime(created.DueDate),
		created.CreatedAt, created.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &created, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	return scanTask(row)
}

func buildFilter(input repository.ListTasksInput) (string, []any) {
	where := []string{"user_id = ?"}
	args := []any{input.UserID}

	if input.Status != "" {
		where = append(where, "status = ?")
		args = append(args, input.Status)
	}
	if input.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, input.Priority)
	}
	for _, tag := range input.Tags {
		where = append(where, "EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value = ?)")
		args = append(args, tag)
	}
	if input.Search != "" {
		pattern := "%" + strings.ToLower(input.Search) + "%"
		where = append(where, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		args = append(args, pattern, pattern)
	}

	return strings.Join(where, " AND "), args
}

func (r *TaskRepository) List(ctx context.Context, input repository.ListTasksInput) ([]*domain.Task, int, error) {
	filter, args := buildFilter(input)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE `+filter, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + filter +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, input.Limit, input.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	tags, err := json.Marshal(task.Tags)
	if err != nil {
		return nil, fmt.Errorf("marshal tags: %w", err)
	}

	updated := *task
	updated.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, description = ?, status = ?, priority = ?, tags = ?, due_date = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		updated.Title, updated.Description, updated.Status, updated.Priority,
		string(tags), nullTime(updated.DueDate), updated.UpdatedAt,
		updated.ID, updated.UserID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return nil, domain.ErrTaskNotFound
	}
	return &updated, nil
}

func (r *TaskRepository) Delete(ctx context.Context, taskID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) CountByStatus(ctx context.Context, userID string) (map[domain.Status]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM tasks WHERE user_id = ? GROUP BY status`, userID)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t       domain.Task
		tags    string
		dueDate sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&tags, &dueDate, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	if err := json.Unmarshal([]byte(tags), &t.Tags); err != nil {
		return nil, fmt.Errorf("unmarshal tags: %w", err)
	}
	if dueDate.Valid {
		due := dueDate.Time
		t.DueDate = &due
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
