package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/ports"
)

// MemoryNonceStore is an in-memory implementation of the NonceStore
// interface. Consumed nonces are kept until their TTL runs out so a replayed
// message is reported as already used rather than unknown.
type MemoryNonceStore struct {
	nonces map[string]*core.Nonce
	mu     sync.Mutex

	sweepTicker *time.Ticker
	done        chan struct{}
}

// NewMemoryNonceStore creates a new in-memory nonce store with a background
// sweep for memory hygiene. Expiry is also checked lazily on Consume, so
// correctness does not depend on the sweep.
func NewMemoryNonceStore() *MemoryNonceStore {
	s := &MemoryNonceStore{
		nonces:      make(map[string]*core.Nonce),
		sweepTicker: time.NewTicker(10 * time.Minute),
		done:        make(chan struct{}),
	}

	go s.sweepExpired()
	return s
}

// Issue generates a random 32-byte hex nonce and records it with the TTL
func (s *MemoryNonceStore) Issue(ctx context.Context, ttl time.Duration) (string, error) {
	nonceBytes := make([]byte, 32)
	if _, err := rand.Read(nonceBytes); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now()
	nonce := &core.Nonce{
		Value:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.nonces[nonce.Value] = nonce

	return nonce.Value, nil
}

// Consume marks the nonce as used. The existence, expiry and consumed checks
// happen under one lock acquisition, so concurrent calls on the same value
// yield success to at most one caller.
func (s *MemoryNonceStore) Consume(ctx context.Context, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	nonce, exists := s.nonces[value]
	if !exists {
		return core.ErrNonceNotFound
	}

	if time.Now().After(nonce.ExpiresAt) {
		delete(s.nonces, value)
		return core.ErrNonceExpired
	}

	if nonce.Consumed {
		return core.ErrNonceConsumed
	}

	nonce.Consumed = true
	return nil
}

// Close stops the background sweep
func (s *MemoryNonceStore) Close() {
	s.sweepTicker.Stop()
	close(s.done)
}

func (s *MemoryNonceStore) sweepExpired() {
	for {
		select {
		case <-s.done:
			return
		case <-s.sweepTicker.C:
			now := time.Now()

			s.mu.Lock()
			for value, nonce := range s.nonces {
				if now.After(nonce.ExpiresAt) {
					delete(s.nonces, value)
				}
			}
			s.mu.Unlock()
		}
	}
}

// MemorySessionStore is an in-memory implementation of the SessionStore
// interface. Expired records are evicted lazily on read.
type MemorySessionStore struct {
	sessions map[string]*core.Session
	mu       sync.RWMutex
}

// NewMemorySessionStore creates a new in-memory session store
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]*core.Session),
	}
}

// Put stores a session record. The TTL parameter is ignored: the session
// carries its own expiry and Get evicts past-expiry records.
func (s *MemorySessionStore) Put(ctx context.Context, session *core.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.ID] = session
	return nil
}

// Get retrieves a session by ID. The common path takes only the read lock;
// the write lock is taken just to evict an expired record.
func (s *MemorySessionStore) Get(ctx context.Context, id string) (*core.Session, error) {
	s.mu.RLock()
	session, exists := s.sessions[id]
	s.mu.RUnlock()

	if !exists {
		return nil, core.ErrSessionNotFound
	}

	if session.Expired(time.Now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, core.ErrSessionExpired
	}

	return session, nil
}

// Delete removes a session; deleting an unknown ID is not an error
func (s *MemorySessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

var _ ports.NonceStore = (*MemoryNonceStore)(nil)
var _ ports.SessionStore = (*MemorySessionStore)(nil)
