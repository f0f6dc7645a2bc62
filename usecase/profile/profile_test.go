package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository/memory"
)

func TestUpdateEmailKeepsTasks(t *testing.T) {
	repo := memory.NewUserRepository()
	ctx := context.Background()

	user := &domain.User{Email: "before@example.com"}
	user.AppendTask(domain.NewTask(domain.TaskFields{TaskName: "keep me"}))
	require.NoError(t, repo.Create(ctx, user))

	uc := New(repo, zaptest.NewLogger(t))
	updated, err := uc.UpdateEmail(ctx, user.ID, "After@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "after@example.com", updated.Email)

	got, err := uc.GetProfile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "after@example.com", got.Email)
	require.Len(t, got.Tasks, 1)
	assert.Equal(t, "keep me", got.Tasks[0].TaskName)
}

func TestProfileUnknownUser(t *testing.T) {
	uc := New(memory.NewUserRepository(), zaptest.NewLogger(t))

	_, err := uc.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = uc.UpdateEmail(context.Background(), "missing", "x@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
