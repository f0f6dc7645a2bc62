package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

// UserRepository keeps user documents in process memory. Every read returns a
// copy so callers mutate their own aggregate, as with the networked drivers.
type UserRepository struct {
	mu      sync.RWMutex
	docs    map[string]repository.UserDocument
	byEmail map[string]string
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		docs:    make(map[string]repository.UserDocument),
		byEmail: make(map[string]string),
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return doc.User(), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[normalizeEmail(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.docs[id].User(), nil
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	email := normalizeEmail(user.Email)
	if email != "" {
		if _, taken := r.byEmail[email]; taken {
			return domain.ErrEmailTaken
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = email
	user.AssignTaskIDs(uuid.NewString)
	user.Touch()

	r.docs[user.ID] = repository.NewUserDocument(user)
	if email != "" {
		r.byEmail[email] = user.ID
	}
	return nil
}

func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.docs[user.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	email := normalizeEmail(user.Email)
	if owner, taken := r.byEmail[email]; taken && owner != user.ID {
		return domain.ErrEmailTaken
	}

	user.Email = email
	user.AssignTaskIDs(uuid.NewString)
	user.UpdatedAt = time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = prev.CreatedAt
	}

	delete(r.byEmail, normalizeEmail(prev.Email))
	if email != "" {
		r.byEmail[email] = user.ID
	}
	r.docs[user.ID] = repository.NewUserDocument(user)
	return nil
}

func (r *UserRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
