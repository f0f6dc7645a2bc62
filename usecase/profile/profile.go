package profile

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return uc.users.GetByID(ctx, userID)
}

// UpdateEmail changes the caller's email. The task list is saved back as
// loaded.
func (uc *UseCase) UpdateEmail(ctx context.Context, userID, email string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Email = email
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
