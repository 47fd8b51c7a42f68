package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

type TaskUsecase struct {
	repo repository.TaskRepository
}

func NewTaskUsecase(repo repository.TaskRepository) *TaskUsecase {
	return &TaskUsecase{repo: repo}
}

type CreateTaskInput struct {
	UserID      string
	Title       string
	Description string
	Status      domain.Status
	Priority    domain.Priority
	Tags        []string
	DueDate     *time.Time
}

func (u *TaskUsecase) Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error) {
	task, err := domain.NewTask(input.UserID, input.Title, input.Description,
		input.Status, input.Priority, input.Tags, input.DueDate)
	if err != nil {
		return nil, err
	}

	created, err := u.repo.Create(ctx, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

func (u *TaskUsecase) GetByID(ctx context.Context, taskID, userID string) (*domain.Task, error) {
	task, err := u.repo.GetByID(ctx, taskID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

type ListTasksInput struct {
	UserID   string
	Status   domain.Status
	Priority domain.Priority
	Tags     []string
	Search   string
	Page     int
	Limit    int
}

// Pagination describes the window a TaskPage was sliced from.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalTasks  int `json:"totalTasks"`
}

type TaskPage struct {
	Tasks      []*domain.Task
	Pagination Pagination
}

// List returns one page of the owner's tasks, newest first. An empty
// result is not an error.
func (u *TaskUsecase) List(ctx context.Context, input ListTasksInput) (*TaskPage, error) {
	if input.Status != "" && !input.Status.Valid() {
		return nil, domain.NewValidationError("Status must be one of: pending, in-progress, completed")
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return nil, domain.NewValidationError("Priority must be one of: low, medium, high")
	}

	page := input.Page
	if page < 1 {
		page = defaultPage
	}
	limit := input.Limit
	if limit < 1 {
		limit = defaultLimit
	}

	tasks, total, err := u.repo.List(ctx, repository.ListTasksInput{
		UserID:   input.UserID,
		Status:   input.Status,
		Priority: input.Priority,
		Tags:     input.Tags,
		Search:   strings.TrimSpace(input.Search),
		Offset:   (page - 1) * limit,
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	totalPages := (total + limit - 1) / limit

	return &TaskPage{
		Tasks: tasks,
		Pagination: Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalTasks:  total,
		},
	}, nil
}

// UpdateTaskInput carries only the fields the caller wants changed;
// nil pointers leave the stored value alone.
type UpdateTaskInput struct {
	TaskID      string
	UserID      string
	Title       *string
	Description *string
	Status      *domain.Status
	Priority    *domain.Priority
	Tags        []string
	DueDate     *time.Time
	ClearDue    bool
}

// Update applies a partial update. There is no version check: two
// concurrent updates race and the later write silently wins.
func (u *TaskUsecase) Update(ctx context.Context, input UpdateTaskInput) (*domain.Task, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, domain.NewValidationError("Title is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, domain.NewValidationError("Status must be one of: pending, in-progress, completed")
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, domain.NewValidationError("Priority must be one of: low, medium, high")
	}

	task, err := u.repo.GetByID(ctx, input.TaskID, input.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("get task: %w", err)
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.Tags != nil {
		task.Tags = input.Tags
	}
	if input.DueDate != nil {
		task.DueDate = input.DueDate
	} else if input.ClearDue {
		task.DueDate = nil
	}

	updated, err := u.repo.Update(ctx, task)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

func (u *TaskUsecase) Delete(ctx context.Context, taskID, userID string) error {
	if err := u.repo.Delete(ctx, taskID, userID); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.ErrTaskNotFound
		}
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// Stats aggregates all of the owner's tasks, unfiltered and unpaginated.
// Every status appears in the map even when its count is zero.
func (u *TaskUsecase) Stats(ctx context.Context, userID string) (*domain.TaskStats, error) {
	counts, err := u.repo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task stats: %w", err)
	}

	stats := &domain.TaskStats{StatusCounts: make(map[domain.Status]int, 3)}
	for _, s := range domain.Statuses() {
		stats.StatusCounts[s] = counts[s]
		stats.TotalTasks += counts[s]
	}
	return stats, nil
}
