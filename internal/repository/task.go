package repository

import (
	"context"

	"taskboard/internal/domain"
)

// ListTasksInput narrows a listing. Zero values mean "no constraint".
type ListTasksInput struct {
	UserID   string
	Status   domain.Status
	Priority domain.Priority
	Tags     []string // task must carry all of them
	Search   string   // case-insensitive substring over title OR description
	Offset   int
	Limit    int
}

// Usecases depend on the interface, not a concrete store. The same
// contract is satisfied by postgres and sqlite implementations, and by
// fakes in tests.
type TaskRepository interface {
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	// GetByID is owner-scoped: a task under a different owner is
	// indistinguishable from a missing one (domain.ErrTaskNotFound).
	GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error)
	// List returns one page ordered by created_at DESC, id DESC,
	// plus the total match count across all pages.
	List(ctx context.Context, input ListTasksInput) ([]*domain.Task, int, error)
	// Update overwrites mutable fields, last write wins. Owner-scoped.
	Update(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Delete(ctx context.Context, taskID, userID string) error
	CountByStatus(ctx context.Context, userID string) (map[domain.Status]int, error)
}
