package repository

import (
	"context"

	"taskboard/internal/domain"
)

type UserRepository interface {
	// Create persists a new user. A duplicate email maps to domain.ErrEmailTaken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
