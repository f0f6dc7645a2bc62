package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/todo-api/domain"
	"github.com/fastygo/todo-api/repository"
)

type Config struct {
	TokenTTL   time.Duration
	BcryptCost int
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	Token   string          `json:"token"`
	Session *domain.Session `json:"session"`
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *Tokens
	cfg      Config
	logger   *zap.Logger
}

func New(users repository.UserRepository, sessions repository.SessionRepository, tokens *Tokens, cfg Config, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost < bcrypt.MinCost || cfg.BcryptCost > bcrypt.MaxCost {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register creates a user with an empty task list.
func (uc *UseCase) Register(ctx context.Context, email, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, domain.WrapError(domain.ErrCodeInvalid, "invalid password", err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: string(hash),
		Tasks:        []domain.Task{},
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials, opens a session and signs a token bound to it.
func (uc *UseCase) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	session := domain.NewSession(uuid.NewString(), user.ID, time.Now(), uc.cfg.TokenTTL)
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	token, err := uc.tokens.Sign(session)
	if err != nil {
		_ = uc.sessions.Delete(ctx, session.ID)
		return nil, err
	}
	return &LoginResult{Token: token, Session: session}, nil
}

// VerifySession succeeds when sessionID is live and belongs to userID. A
// verified session is slid forward by TokenTTL.
func (uc *UseCase) VerifySession(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if session.IsExpired(time.Now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return domain.ErrSessionNotFound
	}
	if session.UserID != userID {
		return domain.ErrUnauthorized
	}
	if err := uc.sessions.Extend(ctx, sessionID, int(uc.cfg.TokenTTL/time.Second)); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return err
		}
		uc.logger.Warn("extend session failed", zap.String("session_id", sessionID), zap.Error(err))
	}
	return nil
}

func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return domain.ErrUnauthorized
	}
	return uc.sessions.Delete(ctx, sessionID)
}
