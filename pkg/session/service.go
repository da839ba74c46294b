// Package session keeps track of signed in users. A session is a signed token handed to the
// browser in a cookie and a key in Redis, ending a session deletes the key which invalidates the
// token before it expires.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dhis2-sre/eventos/internal/errdef"
)

//goland:noinspection GoExportedFuncWithUnexportedType
func NewService(logger *slog.Logger, repository sessionRepository, secretKey string, ttl time.Duration) *Service {
	return &Service{
		logger:     logger,
		repository: repository,
		secretKey:  secretKey,
		ttl:        ttl,
	}
}

type sessionRepository interface {
	Set(userId uint, sessionId string, expiresIn time.Duration) error
	Exists(userId uint, sessionId string) (bool, error)
	Delete(userId uint, sessionId string) error
	DeleteAll(userId uint) error
}

type Service struct {
	logger     *slog.Logger
	repository sessionRepository
	secretKey  string
	ttl        time.Duration
}

// Session of a signed in user.
type Session struct {
	ID        string
	UserId    uint
	Token     string
	ExpiresIn time.Duration
}

// MaxAge is the lifetime of the session in seconds as used by cookies.
func (s Session) MaxAge() int {
	return int(s.ExpiresIn.Seconds())
}

// Start creates a new session for the user.
func (s Service) Start(ctx context.Context, userId uint) (*Session, error) {
	token, err := generateToken(userId, s.secretKey, s.ttl)
	if err != nil {
		return nil, fmt.Errorf("error generating session token for user %d: %v", userId, err)
	}

	if err := s.repository.Set(userId, token.ID, token.ExpiresIn); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Session started", "userId", userId)
	return &Session{
		ID:        token.ID,
		UserId:    userId,
		Token:     token.SignedString,
		ExpiresIn: token.ExpiresIn,
	}, nil
}

// Resolve returns the session identified by token. Invalid, expired or ended sessions result in
// an unauthorized error.
func (s Service) Resolve(ctx context.Context, token string) (*Session, error) {
	claims, err := validateToken(token, s.secretKey)
	if err != nil {
		s.logger.DebugContext(ctx, "Unable to validate session token", "error", err)
		return nil, errdef.NewUnauthorized("session not valid")
	}

	exists, err := s.repository.Exists(claims.UserId, claims.ID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errdef.NewUnauthorized("session has ended")
	}

	return &Session{
		ID:        claims.ID,
		UserId:    claims.UserId,
		Token:     token,
		ExpiresIn: time.Until(claims.ExpiresAt),
	}, nil
}

// End invalidates the session identified by token. Ending an invalid session is a no-op.
func (s Service) End(ctx context.Context, token string) error {
	claims, err := validateToken(token, s.secretKey)
	if err != nil {
		return nil
	}

	if err := s.repository.Delete(claims.UserId, claims.ID); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Session ended", "userId", claims.UserId)
	return nil
}

// EndAll invalidates every session of the user.
func (s Service) EndAll(ctx context.Context, userId uint) error {
	if err := s.repository.DeleteAll(userId); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "All sessions ended", "userId", userId)
	return nil
}
