package bolt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	bbolt "go.etcd.io/bbolt"

	"github.com/fastygo/todo-api/domain"
	boltInfra "github.com/fastygo/todo-api/internal/infrastructure/bolt"
	"github.com/fastygo/todo-api/repository"
)

const (
	UsersBucket  = "users"
	EmailsBucket = "users_by_email"
)

// Buckets lists every bucket the repository expects to exist.
var Buckets = []string{UsersBucket, EmailsBucket}

type userRepository struct {
	store *boltInfra.Store
}

// NewUserRepository stores each user as one JSON document keyed by id, with a
// secondary email index. Every Save is a single Bolt transaction.
func NewUserRepository(store *boltInfra.Store) repository.UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := r.store.DB().View(func(tx *bbolt.Tx) error {
		var err error
		user, err = loadUser(tx, id)
		return err
	})
	return user, err
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user *domain.User
	err := r.store.DB().View(func(tx *bbolt.Tx) error {
		id := tx.Bucket([]byte(EmailsBucket)).Get([]byte(normalizeEmail(email)))
		if id == nil {
			return domain.ErrUserNotFound
		}
		var err error
		user, err = loadUser(tx, string(id))
		return err
	})
	return user, err
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = normalizeEmail(user.Email)
	user.AssignTaskIDs(uuid.NewString)
	user.Touch()

	return r.store.DB().Update(func(tx *bbolt.Tx) error {
		users := tx.Bucket([]byte(UsersBucket))
		if users.Get([]byte(user.ID)) != nil {
			return domain.NewError(domain.ErrCodeConflict, "user already exists")
		}
		email := user.Email
		if email != "" {
			emails := tx.Bucket([]byte(EmailsBucket))
			if emails.Get([]byte(email)) != nil {
				return domain.ErrEmailTaken
			}
			if err := emails.Put([]byte(email), []byte(user.ID)); err != nil {
				return err
			}
		}
		return putUser(users, user)
	})
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	user.Email = normalizeEmail(user.Email)
	user.AssignTaskIDs(uuid.NewString)
	user.UpdatedAt = time.Now().UTC()

	return r.store.DB().Update(func(tx *bbolt.Tx) error {
		prev, err := loadUser(tx, user.ID)
		if err != nil {
			return err
		}
		if user.CreatedAt.IsZero() {
			user.CreatedAt = prev.CreatedAt
		}

		emails := tx.Bucket([]byte(EmailsBucket))
		oldEmail, newEmail := normalizeEmail(prev.Email), user.Email
		if oldEmail != newEmail {
			if newEmail != "" {
				if owner := emails.Get([]byte(newEmail)); owner != nil && string(owner) != user.ID {
					return domain.ErrEmailTaken
				}
				if err := emails.Put([]byte(newEmail), []byte(user.ID)); err != nil {
					return err
				}
			}
			if oldEmail != "" {
				if err := emails.Delete([]byte(oldEmail)); err != nil {
					return err
				}
			}
		}
		return putUser(tx.Bucket([]byte(UsersBucket)), user)
	})
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}

func loadUser(tx *bbolt.Tx, id string) (*domain.User, error) {
	raw := tx.Bucket([]byte(UsersBucket)).Get([]byte(id))
	if raw == nil {
		return nil, domain.ErrUserNotFound
	}
	var doc repository.UserDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return doc.User(), nil
}

func putUser(bucket *bbolt.Bucket, user *domain.User) error {
	payload, err := json.Marshal(repository.NewUserDocument(user))
	if err != nil {
		return err
	}
	return bucket.Put([]byte(user.ID), payload)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
