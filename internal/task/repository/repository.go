package repository

import (
	"context"
	"errors"

	"github.com/AlibekovAA/task-tracker/backend/internal/task/domain"
)

var ErrTaskNotFound = errors.New("task not found")

// Repository stores tasks. Every single-row operation is scoped to the owner
// in the query itself, so a task owned by someone else reports
// ErrTaskNotFound exactly like a missing one.
type Repository interface {
	Create(ctx context.Context, task domain.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)
	FindByID(ctx context.Context, ownerID string, id domain.ID) (domain.Task, error)
	Update(ctx context.Context, ownerID string, task domain.Task) error
	Delete(ctx context.Context, ownerID string, id domain.ID) error
	CountByOwner(ctx context.Context, ownerID string) (domain.Stats, error)
}
