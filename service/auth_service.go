package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/internal/siwe"
	"github.com/portcullis-gate/portcullis/ports"
)

// AuthService orchestrates the sign-in protocol: issue-challenge,
// verify-and-establish-session, and terminate-session. It is the single
// entry point external collaborators call into.
type AuthService struct {
	nonces   ports.NonceStore
	sessions *SessionManager
	eventPub ports.EventPublisher
	logger   *zap.Logger

	nonceTTL time.Duration
}

// NewAuthService creates a new authentication service
func NewAuthService(
	nonces ports.NonceStore,
	sessions *SessionManager,
	eventPub ports.EventPublisher,
	logger *zap.Logger,
	nonceTTL time.Duration,
) *AuthService {
	return &AuthService{
		nonces:   nonces,
		sessions: sessions,
		eventPub: eventPub,
		logger:   logger,
		nonceTTL: nonceTTL,
	}
}

// IssueChallenge generates a new single-use nonce for the client to embed
// in the message it asks the wallet to sign
func (s *AuthService) IssueChallenge(ctx context.Context, host string) (string, error) {
	nonce, err := s.nonces.Issue(ctx, s.nonceTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue challenge: %w", err)
	}

	s.logger.Debug("challenge issued", zap.String("host", host))

	return nonce, nil
}

// Authenticate verifies a signed sign-in message and establishes a session.
//
// The checks run in a fixed order: structural and freshness checks first, so
// a malformed or out-of-window message never burns the nonce; then the nonce
// is consumed, so this exact challenge can never be verified again; only
// then is the signature checked, so an attacker cannot retry signatures
// against one challenge. A failed signature still costs the nonce.
//
// The returned errors carry the fine-grained rejection reason for logging
// and tests; callers serving untrusted clients must collapse every failure
// into one uniform "authentication failed" response.
func (s *AuthService) Authenticate(ctx context.Context, messageText string, signature string, host string, now time.Time) (string, error) {
	msg, err := siwe.Parse(messageText)
	if err != nil {
		s.logger.Debug("sign-in rejected: unparsable message", zap.Error(err))
		return "", fmt.Errorf("%w: %w", core.ErrMalformedMessage, err)
	}

	if err := msg.Validate(host, now); err != nil {
		s.logger.Debug("sign-in rejected: message validation failed",
			zap.String("address", msg.Address),
			zap.String("domain", msg.Domain),
			zap.Error(err))
		return "", err
	}

	if err := s.nonces.Consume(ctx, msg.Nonce); err != nil {
		s.logger.Debug("sign-in rejected: nonce not consumable",
			zap.String("address", msg.Address),
			zap.Error(err))
		return "", err
	}

	if err := siwe.VerifySignature(msg.Raw, signature, msg.Address); err != nil {
		s.logger.Debug("sign-in rejected: signature verification failed",
			zap.String("address", msg.Address),
			zap.Error(err))
		return "", err
	}

	cred, session, err := s.sessions.Create(ctx, msg.Address, msg.ChainID)
	if err != nil {
		return "", err
	}

	s.logger.Info("sign-in succeeded",
		zap.String("address", session.Address),
		zap.String("session_id", session.ID))

	// The session is established either way; event delivery is best effort
	if err := s.eventPub.PublishLogin(ctx, session.Address, session.ID); err != nil {
		s.logger.Warn("failed to publish login event", zap.Error(err))
	}

	return cred, nil
}

// CheckSession is the access-gate primitive: it resolves a credential to the
// verified address, or reports that no valid session exists
func (s *AuthService) CheckSession(ctx context.Context, credential string) (string, error) {
	session, err := s.sessions.Resolve(ctx, credential)
	if err != nil {
		return "", err
	}

	return session.Address, nil
}

// Logout revokes the session a credential refers to. Idempotent: logging out
// twice, or with a credential that never resolved, succeeds.
func (s *AuthService) Logout(ctx context.Context, credential string) error {
	session, err := s.sessions.Resolve(ctx, credential)
	if err != nil {
		// Nothing to revoke; logout still succeeds
		return nil
	}

	if err := s.sessions.Revoke(ctx, credential); err != nil {
		// The record ages out with its TTL; the caller still clears the
		// client-side credential
		s.logger.Warn("failed to revoke session",
			zap.String("session_id", session.ID),
			zap.Error(err))
		return nil
	}

	if err := s.eventPub.PublishLogout(ctx, session.Address, session.ID); err != nil {
		s.logger.Warn("failed to publish logout event", zap.Error(err))
	}

	return nil
}
