package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/civictrack/internal/domain"
)

// ErrNoSession is returned when a session id is unknown or expired.
var ErrNoSession = errors.New("session not found")

// SessionStore persists opaque session ids for the session cookie.
type SessionStore interface {
	Create(ctx context.Context, email string, ttl time.Duration) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

const sessionKeyPrefix = "session:"

type sessionPayload struct {
	Email      string    `json:"email"`
	ValidUntil time.Time `json:"valid_until"`
}

// RedisSessionStore stores sessions as JSON values keyed by the opaque id.
// Keys carry the session TTL, so expired sessions simply disappear.
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore builds a store from an existing client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (s *RedisSessionStore) key(id string) string {
	return sessionKeyPrefix + id
}

// Create generates a new session id and persists it with the given TTL.
func (s *RedisSessionStore) Create(ctx context.Context, email string, ttl time.Duration) (*domain.Session, error) {
	session := &domain.Session{
		ID:         uuid.NewString(),
		Email:      email,
		ValidUntil: time.Now().Add(ttl),
	}

	payload, err := json.Marshal(sessionPayload{Email: session.Email, ValidUntil: session.ValidUntil})
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, s.key(session.ID), payload, ttl).Err(); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return session, nil
}

// Get resolves a session id to its record.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Result()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	var payload sessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &domain.Session{ID: id, Email: payload.Email, ValidUntil: payload.ValidUntil}, nil
}

// Delete removes a session.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}
