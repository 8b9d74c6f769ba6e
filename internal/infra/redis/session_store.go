package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/autodash/internal/core/session"
)

// SessionStore implements session.Store as a single JSON value.
type SessionStore struct {
	rdb *redis.Client
	key string
}

// NewSessionStore creates a Redis-backed session store under key.
func NewSessionStore(client *Client, key string) *SessionStore {
	return &SessionStore{
		rdb: client.rdb,
		key: key,
	}
}

// Load returns the stored state, or placeholders if nothing has been saved yet.
func (s *SessionStore) Load(ctx context.Context) (session.State, error) {
	data, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return session.NewState(), nil
	}
	if err != nil {
		return session.State{}, fmt.Errorf("failed to get session: %w", err)
	}

	state := session.NewState()
	if err := json.Unmarshal(data, &state); err != nil {
		return session.State{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return state, nil
}

// Save overwrites the stored state. Session state never expires.
func (s *SessionStore) Save(ctx context.Context, state session.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.rdb.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}
