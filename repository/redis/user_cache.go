package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

// CacheStats counts cache traffic for the health endpoint.
type CacheStats struct {
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
	Errors  uint64 `json:"errors"`
	// Skipped counts loads not cached because a write evicted the id meanwhile.
	Skipped uint64 `json:"skipped"`
}

const generationSlots = 256

// CachedUserRepository is a cache-aside decorator over another
// UserRepository. Reads by id go through Redis; every write goes to the
// backing store first and then evicts the cached document. Cache failures
// never fail a request.
//
// Each id hashes to a generation slot that eviction bumps. A document loaded
// from the backing store is only cached if its slot has not moved since the
// load started, so a read racing a Save cannot put the pre-save copy back.
type CachedUserRepository struct {
	next   repository.UserRepository
	client *redislib.Client
	prefix string
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger

	genMu sync.Mutex
	gens  [generationSlots]uint64

	hits    atomic.Uint64
	misses  atomic.Uint64
	errs    atomic.Uint64
	skipped atomic.Uint64
}

var _ repository.UserRepository = (*CachedUserRepository)(nil)

func NewCachedUserRepository(next repository.UserRepository, client *redislib.Client, ttl time.Duration, logger *zap.Logger) *CachedUserRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedUserRepository{
		next:   next,
		client: client,
		prefix: "user:",
		ttl:    ttl,
		logger: logger,
	}
}

func (r *CachedUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if user, ok := r.lookup(ctx, id); ok {
		return user, nil
	}

	// Keying the flight by generation keeps callers that arrive after a
	// Save from joining a load that started before it.
	gen := r.generation(id)
	flight := id + "#" + strconv.FormatUint(gen, 10)
	v, err, _ := r.group.Do(flight, func() (interface{}, error) {
		user, err := r.next.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		r.store(ctx, user, gen)
		return repository.NewUserDocument(user), nil
	})
	if err != nil {
		return nil, err
	}
	// Each caller gets its own aggregate to mutate.
	return v.(repository.UserDocument).User(), nil
}

func (r *CachedUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.next.GetByEmail(ctx, email)
}

func (r *CachedUserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.next.Create(ctx, user)
}

func (r *CachedUserRepository) Save(ctx context.Context, user *domain.User) error {
	if err := r.next.Save(ctx, user); err != nil {
		return err
	}
	r.evict(ctx, user.ID)
	return nil
}

func (r *CachedUserRepository) Ping(ctx context.Context) error {
	return r.next.Ping(ctx)
}

// Stats returns a snapshot of the cache counters.
func (r *CachedUserRepository) Stats() CacheStats {
	return CacheStats{
		Hits:    r.hits.Load(),
		Misses:  r.misses.Load(),
		Errors:  r.errs.Load(),
		Skipped: r.skipped.Load(),
	}
}

func (r *CachedUserRepository) lookup(ctx context.Context, id string) (*domain.User, bool) {
	raw, err := r.client.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			r.misses.Add(1)
		} else {
			r.errs.Add(1)
			r.logger.Warn("user cache read failed", zap.String("user_id", id), zap.Error(err))
		}
		return nil, false
	}

	var doc repository.UserDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		r.errs.Add(1)
		r.evict(ctx, id)
		return nil, false
	}
	r.hits.Add(1)
	return doc.User(), true
}

// store caches user unless the id was evicted after generation gen was read.
// The check and the SET happen under genMu, and evict bumps under genMu before
// its DEL, so a SET either sees the bump or is removed by the DEL.
func (r *CachedUserRepository) store(ctx context.Context, user *domain.User, gen uint64) {
	payload, err := json.Marshal(repository.NewUserDocument(user))
	if err != nil {
		r.errs.Add(1)
		return
	}

	r.genMu.Lock()
	defer r.genMu.Unlock()
	if r.gens[slot(user.ID)] != gen {
		r.skipped.Add(1)
		return
	}
	if err := r.client.Set(ctx, r.key(user.ID), payload, r.ttl).Err(); err != nil {
		r.errs.Add(1)
		r.logger.Warn("user cache write failed", zap.String("user_id", user.ID), zap.Error(err))
	}
}

func (r *CachedUserRepository) evict(ctx context.Context, id string) {
	r.genMu.Lock()
	r.gens[slot(id)]++
	r.genMu.Unlock()

	if err := r.client.Del(ctx, r.key(id)).Err(); err != nil {
		r.errs.Add(1)
		r.logger.Warn("user cache eviction failed", zap.String("user_id", id), zap.Error(err))
	}
}

func (r *CachedUserRepository) generation(id string) uint64 {
	r.genMu.Lock()
	defer r.genMu.Unlock()
	return r.gens[slot(id)]
}

func slot(id string) int {
	return int(xxhash.Sum64String(id) % generationSlots)
}

func (r *CachedUserRepository) key(id string) string {
	return r.prefix + id
}
