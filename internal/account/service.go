// Package account handles registered display names: credential storage,
// login, and session tokens. The session core treats it as an external
// collaborator through the Authorize method; guests never touch it.
package account

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/rpsduel-go/internal/dependencies/clock"
	"github.com/mcoot/rpsduel-go/internal/model"
	"github.com/mcoot/rpsduel-go/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrNameExists         = errors.New("name is already registered")
)

// Session represents an authenticated session for a registered name
type Session struct {
	Token     string
	Name      model.ParticipantName
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles registration, login and session validation
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration time.Duration
}

// Config holds configuration for the account service
type Config struct {
	SessionDuration time.Duration
}

// DefaultConfig returns default account configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

// New creates a new account service
func New(storage storage.Storage, clock clock.Clock, cfg Config, logger *slog.Logger) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	return &Service{
		storage:         storage,
		clock:           clock,
		logger:          logger.With(slog.String("component", "account")),
		sessions:        make(map[string]*Session),
		sessionDuration: cfg.SessionDuration,
	}
}

// Register creates an account for a display name and opens a session
func (s *Service) Register(ctx context.Context, name model.ParticipantName, password string) (*Session, error) {
	_, err := s.storage.GetAccount(ctx, name)
	if err == nil {
		return nil, ErrNameExists
	}
	if !errors.Is(err, model.ErrAccountNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	account := &model.Account{
		Name:         name,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, err
	}

	s.logger.Info("account registered", slog.String("name", string(name)))
	return s.createSession(name)
}

// Login authenticates a registered name and opens a session
func (s *Service) Login(ctx context.Context, name model.ParticipantName, password string) (*Session, error) {
	account, err := s.storage.GetAccount(ctx, name)
	if err != nil {
		if errors.Is(err, model.ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.createSession(name)
}

// Authorize checks whether a join may claim the given display name.
// Unregistered names are open to anyone; registered names require a valid
// session token belonging to that name.
func (s *Service) Authorize(ctx context.Context, name model.ParticipantName, token string) error {
	_, err := s.storage.GetAccount(ctx, name)
	if errors.Is(err, model.ErrAccountNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	session, err := s.validateSession(token)
	if err != nil {
		return err
	}
	if session.Name != name {
		return ErrInvalidSession
	}
	return nil
}

// validateSession looks up a token and expires it lazily
func (s *Service) validateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}
	return session, nil
}

func (s *Service) createSession(name model.ParticipantName) (*Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	session := &Session{
		Token:     token,
		Name:      name,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session, nil
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
