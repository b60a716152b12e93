package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"forest/internal/auth"
	"forest/internal/core"
	"forest/internal/log"
	"forest/internal/storage"
)

// AuthService handles registration, login and session lifecycle.
type AuthService struct {
	storage    *storage.SQLiteRepository
	sessionTTL time.Duration
	logger     *log.Logger
}

func NewAuthService(repo *storage.SQLiteRepository, sessionTTL time.Duration, logger *log.Logger) *AuthService {
	return &AuthService{
		storage:    repo,
		sessionTTL: sessionTTL,
		logger:     logger.WithComponent(log.ComponentAuth),
	}
}

// Register creates a new account. Username and email collisions surface
// as core.ErrConflict.
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*core.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	if username == "" {
		return nil, core.Validationf("username is required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, core.Validationf("a valid email is required")
	}
	if len(password) < 8 {
		return nil, core.Validationf("password must be at least 8 characters")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.storage.CreateUser(ctx, username, email, hash)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpRegister)

	return user, nil
}

// Login verifies credentials and opens a session. The returned token goes
// into the session cookie. Bad credentials come back as core.ErrValidation
// without revealing whether the account exists.
func (s *AuthService) Login(ctx context.Context, email, password string) (*core.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.storage.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, "", core.Validationf("invalid email or password")
		}
		return nil, "", err
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, "", core.Validationf("invalid email or password")
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, "", fmt.Errorf("generate session token: %w", err)
	}

	if err := s.storage.CreateSession(ctx, token, user.ID, time.Now().Add(s.sessionTTL)); err != nil {
		return nil, "", fmt.Errorf("create session: %w", err)
	}

	s.logger.InfoContext(ctx, "user logged in",
		log.FieldUserID, user.ID,
		log.FieldOperation, log.OpLogin)

	return user, token, nil
}

// Logout removes the session. A token that is already gone is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.storage.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// ResolveSession looks up the user behind a session token and slides the
// expiry forward. Unknown or expired tokens return core.ErrNotFound.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*core.User, error) {
	info, err := s.storage.GetSession(ctx, token)
	if err != nil {
		return nil, err
	}

	// Rolling sessions: every authenticated request pushes the expiry out.
	if err := s.storage.RenewSession(ctx, token, time.Now().Add(s.sessionTTL)); err != nil {
		s.logger.WarnContext(ctx, "failed to renew session",
			log.FieldUserID, info.User.ID,
			log.FieldError, err.Error())
	}

	return info.User, nil
}

// PruneSessions drops expired sessions. Safe to call periodically.
func (s *AuthService) PruneSessions(ctx context.Context) error {
	return s.storage.DeleteExpiredSessions(ctx)
}

// SessionTTL reports the configured session lifetime.
func (s *AuthService) SessionTTL() time.Duration {
	return s.sessionTTL
}
