package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/angeldelarosa/garagepos-backend/pkg/config"
	redisclient "github.com/angeldelarosa/garagepos-backend/pkg/redis"
)

// ErrSessionNotFound is returned when a token id has no live session.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(tokenID string) string
}

// Manager tracks which issued tokens still have a live session, so logout
// can invalidate a JWT before it expires.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	HasSession(ctx context.Context, tokenID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.TokenTTL()
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive")
	}
	return &Manager{
		store: client,
		keyer: client,
		ttl:   ttl,
	}, nil
}

// Open records a live session for the token id. The marker expires with the token.
func (m *Manager) Open(ctx context.Context, tokenID, operatorID string) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	if strings.TrimSpace(operatorID) == "" {
		return fmt.Errorf("operator id is required")
	}
	return m.store.Set(ctx, m.keyer.SessionKey(tokenID), operatorID, m.ttl)
}

// HasSession reports whether the token id still maps to a live session.
func (m *Manager) HasSession(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, fmt.Errorf("token id is required")
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(tokenID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Revoke deletes the session marker so the token stops working.
func (m *Manager) Revoke(ctx context.Context, tokenID string) error {
	if strings.TrimSpace(tokenID) == "" {
		return fmt.Errorf("token id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(tokenID))
}

// NewTokenID produces the identifier used as the JWT jti and session key.
func NewTokenID() string {
	return uuid.NewString()
}
