package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/ports"
)

// SessionManager owns the session store. Sessions are only ever created
// through Create, which the AuthService calls after a successful signature
// verification; holders of a credential can resolve or revoke their own
// session but never mutate it.
type SessionManager struct {
	store ports.SessionStore
	creds ports.Credentialer

	sessionTTL time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(store ports.SessionStore, creds ports.Credentialer, sessionTTL time.Duration) *SessionManager {
	return &SessionManager{
		store:      store,
		creds:      creds,
		sessionTTL: sessionTTL,
	}
}

// Create issues a new session for a verified address and returns the opaque
// credential to hand to the client
func (m *SessionManager) Create(ctx context.Context, address string, chainID string) (string, *core.Session, error) {
	now := time.Now()
	session := &core.Session{
		ID:        uuid.New().String(),
		Address:   core.NormalizeAddress(address),
		ChainID:   chainID,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.sessionTTL),
	}

	if err := m.store.Put(ctx, session, m.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("failed to store session: %w", err)
	}

	cred, err := m.creds.Encode(session)
	if err != nil {
		return "", nil, fmt.Errorf("failed to encode credential: %w", err)
	}

	return cred, session, nil
}

// Resolve returns the session a credential refers to, if it is present and
// unexpired
func (m *SessionManager) Resolve(ctx context.Context, credential string) (*core.Session, error) {
	id, err := m.creds.DecodeID(credential)
	if err != nil {
		return nil, err
	}

	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if session.Expired(time.Now()) {
		return nil, core.ErrSessionExpired
	}

	return session, nil
}

// Revoke removes the session a credential refers to. Revoking an unknown,
// expired or malformed credential is not an error.
func (m *SessionManager) Revoke(ctx context.Context, credential string) error {
	id, err := m.creds.DecodeID(credential)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredential) || errors.Is(err, core.ErrSessionExpired) {
			return nil
		}
		return err
	}

	return m.store.Delete(ctx, id)
}
