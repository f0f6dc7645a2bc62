package repository

import (
	"context"

	"github.com/fastygo/todo-api/domain"
)

// UserRepository loads and saves whole User aggregates, embedded tasks
// included. Implementations return domain.ErrUserNotFound for unknown ids.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	// Create stores a new user and assigns its id.
	Create(ctx context.Context, user *domain.User) error
	// Save replaces the stored aggregate in a single write. Tasks without an
	// id are given one before the write and the ids are visible on user
	// afterwards.
	Save(ctx context.Context, user *domain.User) error
	Ping(ctx context.Context) error
}
