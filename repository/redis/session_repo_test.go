package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/todo-api/domain"
)

func TestSessionRepositoryRoundTrip(t *testing.T) {
	client, server := testClient(t)
	repo := NewSessionRepository(client, time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "abc", UserID: "u1"}))

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.ExpiresAt.After(got.CreatedAt))

	assert.Equal(t, time.Minute, server.TTL("session:abc").Round(time.Second))
	require.NoError(t, repo.Extend(ctx, "abc", 120))
	assert.Equal(t, 2*time.Minute, server.TTL("session:abc"))
	extended, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, extended.ExpiresAt.After(got.ExpiresAt))
	require.NoError(t, repo.Delete(ctx, "abc"))

	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.ErrorIs(t, repo.Extend(ctx, "abc", 120), domain.ErrSessionNotFound)
}

func TestSessionRepositoryRejectsEmptyID(t *testing.T) {
	repo := NewSessionRepository(deadClient(t), time.Minute)
	assert.ErrorIs(t, repo.Save(context.Background(), &domain.Session{}), domain.ErrInvalidPayload)
}
