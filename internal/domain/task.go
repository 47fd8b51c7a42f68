package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in a stable order. Stats responses must
// carry all of them, including zero counts.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is owned by exactly one user. UserID is immutable after creation.
type Task struct {
	ID          string
	UserID      string
	Title       string
	Description string
	Status      Status
	Priority    Priority
	Tags        []string
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTask builds a task with defaults applied and fields validated,
// independent of whatever shape the store keeps.
func NewTask(userID, title, description string, status Status, priority Priority, tags []string, dueDate *time.Time) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, NewValidationError("Title is required")
	}
	if status == "" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, NewValidationError("Status must be one of: pending, in-progress, completed")
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if !priority.Valid() {
		return nil, NewValidationError("Priority must be one of: low, medium, high")
	}
	if tags == nil {
		tags = []string{}
	}

	return &Task{
		UserID:      userID,
		Title:       title,
		Description: description,
		Status:      status,
		Priority:    priority,
		Tags:        tags,
		DueDate:     dueDate,
	}, nil
}

// TaskStats aggregates one owner's tasks. StatusCounts always has an
// entry for every status value.
type TaskStats struct {
	TotalTasks   int
	StatusCounts map[Status]int
}
