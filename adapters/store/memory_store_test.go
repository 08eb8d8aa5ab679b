package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portcullis-gate/portcullis/core"
)

func TestMemoryNonceStoreSingleUse(t *testing.T) {
	s := NewMemoryNonceStore()
	defer s.Close()
	ctx := context.Background()

	value, err := s.Issue(ctx, time.Minute)
	require.NoError(t, err)
	require.Len(t, value, 64) // 32 random bytes, hex-encoded

	require.NoError(t, s.Consume(ctx, value))

	err = s.Consume(ctx, value)
	require.ErrorIs(t, err, core.ErrNonceConsumed)
}

func TestMemoryNonceStoreConcurrentConsume(t *testing.T) {
	s := NewMemoryNonceStore()
	defer s.Close()
	ctx := context.Background()

	value, err := s.Issue(ctx, time.Minute)
	require.NoError(t, err)

	const attempts = 64

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- s.Consume(ctx, value)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, alreadyUsed int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, core.ErrNonceConsumed):
			alreadyUsed++
		}
	}

	// Exactly one concurrent attempt may win the nonce
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, alreadyUsed)
}

func TestMemoryNonceStoreExpiry(t *testing.T) {
	s := NewMemoryNonceStore()
	defer s.Close()
	ctx := context.Background()

	value, err := s.Issue(ctx, -time.Second)
	require.NoError(t, err)

	err = s.Consume(ctx, value)
	require.ErrorIs(t, err, core.ErrNonceExpired)

	// The expired entry is gone; replaying reports not-found
	err = s.Consume(ctx, value)
	require.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestMemoryNonceStoreUnknownValue(t *testing.T) {
	s := NewMemoryNonceStore()
	defer s.Close()

	err := s.Consume(context.Background(), "never-issued")
	require.ErrorIs(t, err, core.ErrNonceNotFound)
}

func TestMemoryNonceStoreIssueIsCollisionFree(t *testing.T) {
	s := NewMemoryNonceStore()
	defer s.Close()
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 256; i++ {
		value, err := s.Issue(ctx, time.Minute)
		require.NoError(t, err)
		require.False(t, seen[value])
		seen[value] = true
	}
}

func newTestSession(ttl time.Duration) *core.Session {
	now := time.Now()
	return &core.Session{
		ID:        uuid.New().String(),
		Address:   "0x196a28d05ba75c8dc35b0f6e71dd622d1ac82b7e",
		ChainID:   "1",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestMemorySessionStore(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	session := newTestSession(time.Hour)
	require.NoError(t, s.Put(ctx, session, time.Hour))

	got, err := s.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session.Address, got.Address)
	assert.Equal(t, session.ChainID, got.ChainID)

	require.NoError(t, s.Delete(ctx, session.ID))

	_, err = s.Get(ctx, session.ID)
	require.ErrorIs(t, err, core.ErrSessionNotFound)

	// Deleting again is not an error
	require.NoError(t, s.Delete(ctx, session.ID))
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	s := NewMemorySessionStore()
	ctx := context.Background()

	session := newTestSession(-time.Second)
	require.NoError(t, s.Put(ctx, session, time.Hour))

	_, err := s.Get(ctx, session.ID)
	require.ErrorIs(t, err, core.ErrSessionExpired)

	// Lazily evicted on first read
	_, err = s.Get(ctx, session.ID)
	require.ErrorIs(t, err, core.ErrSessionNotFound)
}
