package redis

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
	"github.com/fastygo/todo-api/repository/memory"
)

type countingRepo struct {
	repository.UserRepository
	reads atomic.Int64
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.reads.Add(1)
	return r.UserRepository.GetByID(ctx, id)
}

func seedUser(t *testing.T, repo repository.UserRepository) *domain.User {
	t.Helper()
	user := &domain.User{Email: "cache@example.com"}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestCachedUserRepositoryFallsBackWhenRedisIsDown(t *testing.T) {
	backing := &countingRepo{UserRepository: memory.NewUserRepository()}
	user := seedUser(t, backing)
	cache := NewCachedUserRepository(backing, deadClient(t), time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	got, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	got.AppendTask(domain.NewTask(domain.TaskFields{TaskName: "offline"}))
	require.NoError(t, cache.Save(ctx, got))

	stored, err := backing.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, stored.Tasks, 1)

	stats := cache.Stats()
	assert.Zero(t, stats.Hits)
	assert.GreaterOrEqual(t, stats.Errors, uint64(2))
}

func TestCachedUserRepositoryPropagatesNotFound(t *testing.T) {
	cache := NewCachedUserRepository(memory.NewUserRepository(), deadClient(t), time.Minute, zaptest.NewLogger(t))

	_, err := cache.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestCachedUserRepositoryServesHitsAndEvictsOnSave(t *testing.T) {
	client, _ := testClient(t)
	backing := &countingRepo{UserRepository: memory.NewUserRepository()}
	user := seedUser(t, backing)
	cache := NewCachedUserRepository(backing, client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	first, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	second, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), backing.reads.Load())
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, uint64(1), cache.Stats().Hits)

	second.AppendTask(domain.NewTask(domain.TaskFields{TaskName: "fresh"}))
	require.NoError(t, cache.Save(ctx, second))

	third, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, third.Tasks, 1)
	assert.Equal(t, "fresh", third.Tasks[0].TaskName)
	assert.Equal(t, int64(2), backing.reads.Load())
}

func TestCachedUserRepositoryCallersGetIndependentCopies(t *testing.T) {
	client, _ := testClient(t)
	backing := memory.NewUserRepository()
	user := seedUser(t, backing)
	cache := NewCachedUserRepository(backing, client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	var wg sync.WaitGroup
	users := make([]*domain.User, 8)
	for i := range users {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, err := cache.GetByID(ctx, user.ID)
			if err == nil {
				users[i] = u
			}
		}(i)
	}
	wg.Wait()

	for _, u := range users {
		require.NotNil(t, u)
	}
	users[0].AppendTask(domain.NewTask(domain.TaskFields{TaskName: "mine"}))
	for _, u := range users[1:] {
		assert.Empty(t, u.Tasks)
	}
}

// gatedRepo holds GetByID after the backing read until release is closed.
type gatedRepo struct {
	repository.UserRepository
	loaded  chan struct{}
	release chan struct{}
	gate    atomic.Bool
}

func (r *gatedRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.UserRepository.GetByID(ctx, id)
	if r.gate.CompareAndSwap(true, false) {
		close(r.loaded)
		<-r.release
	}
	return user, err
}

func TestCachedUserRepositoryDoesNotCacheReadThatRacedSave(t *testing.T) {
	client, server := testClient(t)
	backing := &gatedRepo{
		UserRepository: memory.NewUserRepository(),
		loaded:         make(chan struct{}),
		release:        make(chan struct{}),
	}
	user := seedUser(t, backing)
	cache := NewCachedUserRepository(backing, client, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	backing.gate.Store(true)
	done := make(chan *domain.User, 1)
	go func() {
		u, err := cache.GetByID(ctx, user.ID)
		if err != nil {
			u = nil
		}
		done <- u
	}()
	<-backing.loaded

	// The slow read holds a copy without the task below.
	writer, err := backing.UserRepository.GetByID(ctx, user.ID)
	require.NoError(t, err)
	writer.AppendTask(domain.NewTask(domain.TaskFields{TaskName: "committed"}))
	require.NoError(t, cache.Save(ctx, writer))

	close(backing.release)
	stale := <-done
	require.NotNil(t, stale)
	assert.Empty(t, stale.Tasks)

	assert.False(t, server.Exists("user:"+user.ID))
	assert.Equal(t, uint64(1), cache.Stats().Skipped)

	fresh, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, fresh.Tasks, 1)
	assert.Equal(t, "committed", fresh.Tasks[0].TaskName)

	again, err := cache.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, again.Tasks, 1)
}
