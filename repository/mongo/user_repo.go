package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

type userRepository struct {
	collection *mongodriver.Collection
}

// NewUserRepository stores each user as one document with an embedded tasks
// array. Ids are ObjectID hex strings.
func NewUserRepository(collection *mongodriver.Collection) repository.UserRepository {
	return &userRepository{collection: collection}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user == nil {
		return domain.ErrInvalidPayload
	}
	if user.ID == "" {
		user.ID = newObjectID()
	}
	user.Email = normalizeEmail(user.Email)
	user.AssignTaskIDs(newObjectID)
	user.Touch()

	if _, err := r.collection.InsertOne(ctx, repository.NewUserDocument(user)); err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userRepository) Save(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == "" {
		return domain.ErrInvalidPayload
	}
	user.Email = normalizeEmail(user.Email)
	user.AssignTaskIDs(newObjectID)
	user.UpdatedAt = time.Now().UTC()

	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": user.ID}, repository.NewUserDocument(user))
	if err != nil {
		if mongodriver.IsDuplicateKeyError(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("save user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc repository.UserDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongodriver.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.User(), nil
}

func newObjectID() string {
	return primitive.NewObjectID().Hex()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
