package core

import (
	"strings"
	"time"
)

// Nonce represents a single-use sign-in challenge value
type Nonce struct {
	Value     string    // Random challenge value embedded in the signed message
	IssuedAt  time.Time // When the nonce was created
	ExpiresAt time.Time // When the nonce expires
	Consumed  bool      // Whether a verification attempt has used the nonce
}

// Session represents an authenticated user session
type Session struct {
	ID        string    // Unique session identifier
	Address   string    // Ethereum address of the user, lowercase
	ChainID   string    // Chain the user signed in from
	IssuedAt  time.Time // When the session was created
	ExpiresAt time.Time // When the session expires
}

// Expired reports whether the session is past its expiry at the given moment.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// NormalizeAddress lowercases a hex address so session identity never
// depends on checksum casing.
func NormalizeAddress(address string) string {
	return strings.ToLower(address)
}
