// Package task implements the per-user task list. Every operation loads the
// caller's User aggregate, changes its embedded task list in memory and, for
// mutations, saves the whole aggregate back in one write. Concurrent writers
// to the same user are last-write-wins.
package task

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/pkg/logger"
	"github.com/fastygo/todo-api/repository"
)

type UseCase struct {
	users  repository.UserRepository
	logger *zap.Logger
}

func New(users repository.UserRepository, log *zap.Logger) *UseCase {
	if log == nil {
		log = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		logger: log,
	}
}

// Create appends a new remaining task and returns it with its assigned id.
// Fields are stored as given; an empty name is accepted.
func (uc *UseCase) Create(ctx context.Context, userID string, fields domain.TaskFields) (*domain.Task, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	i := user.AppendTask(domain.NewTask(fields))
	if err := uc.users.Save(ctx, user); err != nil {
		return nil, err
	}

	task := user.Tasks[i]
	uc.log(ctx).Debug("task created", zap.String("user_id", userID), zap.String("task_id", task.ID))
	return &task, nil
}

// ListAll returns every task in stored order. It never returns a nil slice.
func (uc *UseCase) ListAll(ctx context.Context, userID string) ([]domain.Task, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Tasks == nil {
		return []domain.Task{}, nil
	}
	return user.Tasks, nil
}

// ListByStatus returns the tasks whose status equals status exactly.
func (uc *UseCase) ListByStatus(ctx context.Context, userID string, status domain.TaskStatus) ([]domain.Task, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.TasksByStatus(status), nil
}

func (uc *UseCase) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := user.TaskIndex(taskID)
	if i < 0 {
		return nil, domain.ErrTaskNotFound
	}
	task := user.Tasks[i]
	return &task, nil
}

// Update overwrites name, description and reminder with the supplied values,
// including empty ones. Status and id are left alone.
func (uc *UseCase) Update(ctx context.Context, userID, taskID string, fields domain.TaskFields) (*domain.Task, error) {
	user, i, err := uc.locate(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	task := &user.Tasks[i]
	task.TaskName = fields.TaskName
	task.TaskDesc = fields.TaskDesc
	task.ReminderTime = fields.ReminderTime

	if err := uc.users.Save(ctx, user); err != nil {
		return nil, err
	}

	updated := user.Tasks[i]
	uc.log(ctx).Debug("task updated", zap.String("user_id", userID), zap.String("task_id", taskID))
	return &updated, nil
}

// ToggleStatus flips the task between remaining and completed and returns the
// new status.
func (uc *UseCase) ToggleStatus(ctx context.Context, userID, taskID string) (domain.TaskStatus, error) {
	user, i, err := uc.locate(ctx, userID, taskID)
	if err != nil {
		return "", err
	}

	status := user.Tasks[i].Status.Toggle()
	user.Tasks[i].Status = status

	if err := uc.users.Save(ctx, user); err != nil {
		return "", err
	}

	uc.log(ctx).Debug("task status toggled",
		zap.String("user_id", userID),
		zap.String("task_id", taskID),
		zap.String("status", string(status)))
	return status, nil
}

// Delete removes the first task with the given id.
func (uc *UseCase) Delete(ctx context.Context, userID, taskID string) error {
	user, i, err := uc.locate(ctx, userID, taskID)
	if err != nil {
		return err
	}

	user.RemoveTaskAt(i)
	if err := uc.users.Save(ctx, user); err != nil {
		return err
	}

	uc.log(ctx).Debug("task deleted", zap.String("user_id", userID), zap.String("task_id", taskID))
	return nil
}

func (uc *UseCase) locate(ctx context.Context, userID, taskID string) (*domain.User, int, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, -1, err
	}
	i := user.TaskIndex(taskID)
	if i < 0 {
		return nil, -1, domain.ErrTaskNotFound
	}
	return user, i, nil
}

func (uc *UseCase) log(ctx context.Context) *zap.Logger {
	return logger.WithRequestID(ctx, uc.logger)
}
