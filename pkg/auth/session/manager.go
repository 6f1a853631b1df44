package session

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/campustrade/campustrade-backend/pkg/config"
	redisclient "github.com/campustrade/campustrade-backend/pkg/redis"
)

const refreshTokenBytes = 32

// ErrInvalidRefreshToken signals a refresh token that does not match the
// stored session.
var ErrInvalidRefreshToken = errors.New("invalid refresh token")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(accessID string) string
}

// Manager handles refresh token creation, storage, and rotation. The
// "remember me" choice selects the longer of the two configured TTLs.
type Manager struct {
	store       sessionStore
	keyer       sessionKeyer
	jwtCfg      config.JWTConfig
	rememberTag string
}

// AccessSessionChecker exposes the read-only surface needed by middleware.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	accessTTL := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if cfg.SessionTTL(false) <= accessTTL {
		return nil, fmt.Errorf("session ttl (%s) must exceed access token ttl (%s)", cfg.SessionTTL(false), accessTTL)
	}
	if cfg.SessionTTL(true) < cfg.SessionTTL(false) {
		return nil, fmt.Errorf("remember ttl must not be shorter than the base session ttl")
	}

	return &Manager{
		store:       client,
		keyer:       client,
		jwtCfg:      cfg,
		rememberTag: "|remember",
	}, nil
}

// NewAccessID returns a fresh session identifier for use as a JWT jti.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate creates a refresh token for the provided access ID and stores it
// in Redis under the TTL matching the remember choice.
func (m *Manager) Generate(ctx context.Context, accessID string, remember bool) (string, error) {
	if strings.TrimSpace(accessID) == "" {
		return "", fmt.Errorf("access id is required")
	}
	token, err := generateRefreshToken()
	if err != nil {
		return "", err
	}
	stored := token
	if remember {
		stored += m.rememberTag
	}
	if err := m.store.Set(ctx, m.keyer.SessionKey(accessID), stored, m.jwtCfg.SessionTTL(remember)); err != nil {
		return "", err
	}
	return token, nil
}

// HasSession reports whether the access ID still maps to a live session.
func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if strings.TrimSpace(accessID) == "" {
		return false, nil
	}
	if _, err := m.store.Get(ctx, m.keyer.SessionKey(accessID)); err != nil {
		if errors.Is(err, redislib.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Rotate validates the provided refresh token, invalidates the prior session,
// and issues a replacement access ID/refresh token pair. The remember choice
// made at login survives rotation.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if strings.TrimSpace(oldAccessID) == "" || strings.TrimSpace(provided) == "" {
		return "", "", ErrInvalidRefreshToken
	}

	key := m.keyer.SessionKey(oldAccessID)
	stored, err := m.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return "", "", ErrInvalidRefreshToken
		}
		return "", "", err
	}

	remember := strings.HasSuffix(stored, m.rememberTag)
	token := strings.TrimSuffix(stored, m.rememberTag)
	if subtle.ConstantTimeCompare([]byte(token), []byte(provided)) != 1 {
		return "", "", ErrInvalidRefreshToken
	}

	if err := m.store.Del(ctx, key); err != nil {
		return "", "", err
	}

	newAccessID := NewAccessID()
	newToken, err := m.Generate(ctx, newAccessID, remember)
	if err != nil {
		return "", "", err
	}
	return newAccessID, newToken, nil
}

// Revoke drops the session for the given access ID.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return nil
	}
	return m.store.Del(ctx, m.keyer.SessionKey(accessID))
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
