package ports

import (
	"context"
	"time"

	"github.com/portcullis-gate/portcullis/core"
)

// NonceStore issues and single-use-consumes sign-in challenge nonces
type NonceStore interface {
	// Issue generates a fresh random nonce, records it with the given TTL and
	// returns its value
	Issue(ctx context.Context, ttl time.Duration) (string, error)

	// Consume atomically checks that the nonce exists, is unexpired and has
	// not been used, and marks it used. At most one concurrent caller
	// succeeds for a given value.
	Consume(ctx context.Context, value string) error
}

// SessionStore persists session records keyed by session ID
type SessionStore interface {
	Put(ctx context.Context, session *core.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*core.Session, error)
	Delete(ctx context.Context, id string) error
}
