package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/ports"
)

// RedisNonceStore is a Redis implementation of the NonceStore interface
type RedisNonceStore struct {
	client *redis.Client
	prefix string
}

// NewRedisNonceStore creates a new Redis nonce store
func NewRedisNonceStore(client *redis.Client) ports.NonceStore {
	return &RedisNonceStore{
		client: client,
		prefix: "portcullis:nonce:",
	}
}

// Issue generates a random nonce and records it with the TTL
func (s *RedisNonceStore) Issue(ctx context.Context, ttl time.Duration) (string, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	value := hex.EncodeToString(nonceBytes)

	if err := s.client.Set(ctx, s.prefix+value, "1", ttl).Err(); err != nil {
		return "", fmt.Errorf("%w: recording nonce: %w", core.ErrStoreOperationFailed, err)
	}

	return value, nil
}

// Consume removes the nonce in a single atomic GETDEL. Redis evicts the key
// on expiry and consumption deletes it, so unknown, expired and already-used
// nonces all collapse into not-found here; single-use still holds because
// only the first GETDEL observes the key.
func (s *RedisNonceStore) Consume(ctx context.Context, value string) error {
	_, err := s.client.GetDel(ctx, s.prefix+value).Result()
	if err == redis.Nil {
		return core.ErrNonceNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: consuming nonce: %w", core.ErrStoreOperationFailed, err)
	}

	return nil
}

// RedisSessionStore is a Redis implementation of the SessionStore interface
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

// NewRedisSessionStore creates a new Redis session store
func NewRedisSessionStore(client *redis.Client) ports.SessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: "portcullis:session:",
	}
}

// Put stores the session as JSON with the given TTL
func (s *RedisSessionStore) Put(ctx context.Context, session *core.Session, ttl time.Duration) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.prefix+session.ID, payload, ttl).Err(); err != nil {
		return fmt.Errorf("%w: storing session: %w", core.ErrStoreOperationFailed, err)
	}

	return nil
}

// Get retrieves a session by ID
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	payload, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if err == redis.Nil {
		return nil, core.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: loading session: %w", core.ErrStoreOperationFailed, err)
	}

	var session core.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	if session.Expired(time.Now()) {
		return nil, core.ErrSessionExpired
	}

	return &session, nil
}

// Delete removes a session; deleting an unknown ID is not an error
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("%w: deleting session: %w", core.ErrStoreOperationFailed, err)
	}

	return nil
}
