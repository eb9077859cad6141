package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Authenticator checks the single admin account and issues sessions
type Authenticator struct {
	store        SessionStore
	adminEmail   string
	passwordHash []byte
	ttl          time.Duration
	logger       *slog.Logger
	now          func() time.Time
}

type Config struct {
	AdminEmail        string
	AdminPasswordHash string
	SessionTTL        time.Duration
}

func NewAuthenticator(cfg Config, store SessionStore, logger *slog.Logger) (*Authenticator, error) {
	if _, err := bcrypt.Cost([]byte(cfg.AdminPasswordHash)); err != nil {
		return nil, fmt.Errorf("admin password hash is not a bcrypt hash: %w", err)
	}

	return &Authenticator{
		store:        store,
		adminEmail:   strings.ToLower(strings.TrimSpace(cfg.AdminEmail)),
		passwordHash: []byte(cfg.AdminPasswordHash),
		ttl:          cfg.SessionTTL,
		logger:       logger,
		now:          time.Now,
	}, nil
}

// Login verifies the credentials and stores a new session
func (a *Authenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(a.adminEmail)) == 1
	// bcrypt runs for a wrong email too; response time must not reveal the account
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !emailOK || passErr != nil {
		a.logger.Warn("Admin login rejected", slog.String("email", email))
		return nil, ErrInvalidCredentials
	}

	now := a.now()
	s := Session{
		Token:     uuid.NewString(),
		Email:     a.adminEmail,
		CreatedAt: now,
		ExpiresAt: now.Add(a.ttl),
	}

	if err := a.store.Save(ctx, s); err != nil {
		return nil, err
	}

	a.logger.Info("Admin logged in", slog.String("email", s.Email))
	return &s, nil
}

// Logout deletes the session. Unknown tokens are not an error.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return a.store.Delete(ctx, token)
}

// Session resolves a token to a live session
func (a *Authenticator) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, ErrSessionNotFound
	}

	s, err := a.store.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if s.expired(a.now()) {
		return nil, ErrSessionNotFound
	}
	return s, nil
}
