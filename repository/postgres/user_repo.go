package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository instantiates a Postgres-backed user repository. The task
// list lives in a JSONB column so the whole aggregate is written by one
// statement.
func NewUserRepository(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepository{pool: pool}
}

const selectUser = `
	SELECT id, email, password_hash, metadata, tasks, created_at, updated_at
	FROM users
`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUserNotFound
	}
	row := r.pool.QueryRow(ctx, selectUser+`WHERE id = $1`, id)
	return scanUser(row)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, selectUser+`WHERE email = $1`, normalizeEmail(email))
	return scanUser(row)
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

	tasks, err := marshalTasks(user.Tasks)
	if err != nil {
		return err
	}

	const query = `
	INSERT INTO users (id, email, password_hash, metadata, tasks, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()), NOW())
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		marshalMap(user.Metadata),
		tasks,
		nullTime(user.CreatedAt),
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if isUniqueViolation(err) {
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
	if _, err := uuid.Parse(user.ID); err != nil {
		return domain.ErrUserNotFound
	}
	user.Email = normalizeEmail(user.Email)
	user.AssignTaskIDs(uuid.NewString)

	tasks, err := marshalTasks(user.Tasks)
	if err != nil {
		return err
	}

	const query = `
	UPDATE users
	SET email = $2,
		password_hash = $3,
		metadata = $4,
		tasks = $5,
		updated_at = NOW()
	WHERE id = $1
	RETURNING created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		marshalMap(user.Metadata),
		tasks,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *userRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var (
		metadata []byte
		tasks    []byte
	)

	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&metadata,
		&tasks,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}

	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &user.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata for user %s: %w", user.ID, err)
		}
	}
	if len(tasks) > 0 {
		var docs []repository.TaskDocument
		if err := json.Unmarshal(tasks, &docs); err != nil {
			return nil, fmt.Errorf("decode tasks for user %s: %w", user.ID, err)
		}
		user.Tasks = repository.TaskDocumentsToDomain(docs)
	}

	return &user, nil
}

func marshalTasks(tasks []domain.Task) ([]byte, error) {
	return json.Marshal(repository.NewTaskDocuments(tasks))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
