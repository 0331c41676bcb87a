package redis

// Package redis provides the Redis-backed session snapshot store.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/pcagrade/planning-client/internal/domain/auth"
	apperrors "github.com/pcagrade/planning-client/internal/errors"
	"github.com/pcagrade/planning-client/internal/ports"
)

// SessionStore persists the current identity snapshot in Redis. Each store is
// bound to one (issuer, clientID) pair at construction; there is at most one
// record per key. Writes replace the record atomically (single SET).
type SessionStore struct {
	client redis.UniversalClient
	key    string
}

var _ ports.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a session store keyed by the issuer and client ID.
func NewSessionStore(client redis.UniversalClient, issuer, clientID string) *SessionStore {
	return &SessionStore{
		client: client,
		key:    fmt.Sprintf("session:%s:%s", issuer, clientID),
	}
}

// Get returns the stored snapshot. Missing and malformed records both report
// ErrNotFound: the snapshot is a fast-path hint, not a source of truth.
func (s *SessionStore) Get(ctx context.Context) (domainauth.Session, error) {
	data, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Session{}, ErrNotFound
		}
		return domainauth.Session{}, apperrors.Wrap(err, apperrors.ErrCodeStorageUnreadable, "redis get")
	}

	var sess domainauth.Session
	if unmarshalErr := json.Unmarshal([]byte(data), &sess); unmarshalErr != nil {
		// A corrupt record is useless; drop it so the next read misses cleanly.
		_ = s.client.Del(ctx, s.key).Err()
		return domainauth.Session{}, ErrNotFound
	}

	return sess, nil
}

// Set stores the snapshot with a TTL matching its expiry. Expired sessions
// are rejected rather than stored.
func (s *SessionStore) Set(ctx context.Context, sess domainauth.Session) error {
	if sess.ID == "" {
		return apperrors.ValidationField("id", "session ID cannot be empty")
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return apperrors.Validation("session is expired")
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeInternal, "marshal session")
	}

	if setErr := s.client.Set(ctx, s.key, data, ttl).Err(); setErr != nil {
		return apperrors.Wrap(setErr, apperrors.ErrCodeStorageUnreadable, "redis set")
	}
	return nil
}

// Remove deletes the snapshot. Deleting an absent record is not an error.
func (s *SessionStore) Remove(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageUnreadable, "redis del")
	}
	return nil
}

// ErrNotFound is returned when no usable session snapshot exists.
type notFoundError struct{}

func (notFoundError) Error() string { return "session not found" }

var ErrNotFound error = notFoundError{}
