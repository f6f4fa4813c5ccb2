// Package auth handles password hashing and bearer-token sessions.
// Tokens are opaque UUIDs stored in Redis with a sliding TTL; nothing
// user-identifying lives in the token itself.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid/v5"
	"golang.org/x/crypto/bcrypt"

	"talentscope/internal/config"
	"talentscope/internal/storage"
	"talentscope/internal/storage/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found or expired")
	ErrUserDisabled       = errors.New("user account is disabled")
)

// Service implements registration, login and session checks.
type Service struct {
	store *storage.Storage
	cfg   *config.AuthConfig
}

func NewService(cfg *config.Config, store *storage.Storage) *Service {
	return &Service{store: store, cfg: &cfg.Auth}
}

// HashPassword bcrypt-hashes a password after policy checks.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) < s.cfg.MinPasswordLength {
		return "", fmt.Errorf("password must have at least %d characters", s.cfg.MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// newSessionToken mints an opaque random bearer token.
func newSessionToken() string {
	return uuid.Must(uuid.NewV4()).String()
}

// Register creates a user with a hashed password.
func (s *Service) Register(ctx context.Context, username, email, password, displayName string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, fmt.Errorf("username and email are required")
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		UserID:       storage.NewID(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		IsActive:     true,
	}
	if err := s.store.MySQL.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login checks credentials and opens a session. The returned token is
// the caller's bearer credential.
func (s *Service) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	user, err := s.store.MySQL.GetUserByUsername(ctx, username)
	if err != nil {
		if storage.IsNotFound(err) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("looking up user: %w", err)
	}
	if !user.IsActive {
		return "", nil, ErrUserDisabled
	}
	if !CheckPassword(user.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	token := newSessionToken()
	if err := s.store.Redis.SetSession(ctx, token, user.UserID); err != nil {
		return "", nil, fmt.Errorf("storing session: %w", err)
	}

	if err := s.store.MySQL.TouchUserLogin(ctx, user.UserID); err != nil {
		// Login still succeeds; last_login_at is advisory.
		return token, user, nil
	}
	return token, user, nil
}

// Authenticate resolves a bearer token to its user and slides the
// session TTL forward.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	userID, err := s.store.Redis.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	user, err := s.store.MySQL.GetUserByID(ctx, userID)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("loading session user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	_ = s.store.Redis.RefreshSession(ctx, token)
	return user, nil
}

// Users lists every account, for the admin panel.
func (s *Service) Users(ctx context.Context) ([]models.User, error) {
	return s.store.MySQL.ListUsers(ctx)
}

// SetAdmin grants or revokes the admin flag. The acting user cannot
// demote themselves; that would strand an admin-less installation.
func (s *Service) SetAdmin(ctx context.Context, actingUserID, targetUserID string, isAdmin bool) error {
	if actingUserID == targetUserID && !isAdmin {
		return fmt.Errorf("cannot revoke your own admin access")
	}
	if _, err := s.store.MySQL.GetUserByID(ctx, targetUserID); err != nil {
		return err
	}
	return s.store.MySQL.SetUserAdmin(ctx, targetUserID, isAdmin)
}

// DeleteUser removes an account. Self-deletion is rejected.
func (s *Service) DeleteUser(ctx context.Context, actingUserID, targetUserID string) error {
	if actingUserID == targetUserID {
		return fmt.Errorf("cannot delete your own account")
	}
	if _, err := s.store.MySQL.GetUserByID(ctx, targetUserID); err != nil {
		return err
	}
	return s.store.MySQL.DeleteUser(ctx, targetUserID)
}

// Logout ends the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Redis.DeleteSession(ctx, token)
}
