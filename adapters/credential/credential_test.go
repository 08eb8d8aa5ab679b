package credential

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portcullis-gate/portcullis/core"
)

func newSession(ttl time.Duration) *core.Session {
	now := time.Now()
	return &core.Session{
		ID:        uuid.New().String(),
		Address:   "0x196a28d05ba75c8dc35b0f6e71dd622d1ac82b7e",
		ChainID:   "1",
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	}
}

func TestOpaqueCredentialer(t *testing.T) {
	creds := NewOpaqueCredentialer()
	session := newSession(time.Hour)

	cred, err := creds.Encode(session)
	require.NoError(t, err)
	assert.Equal(t, session.ID, cred)

	id, err := creds.DecodeID(cred)
	require.NoError(t, err)
	assert.Equal(t, session.ID, id)

	_, err = creds.DecodeID("not-a-session-id")
	require.ErrorIs(t, err, core.ErrInvalidCredential)
}

func TestJWTCredentialer(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	creds := NewJWTCredentialer(signKey)
	session := newSession(time.Hour)

	cred, err := creds.Encode(session)
	require.NoError(t, err)
	require.NotEqual(t, session.ID, cred)

	id, err := creds.DecodeID(cred)
	require.NoError(t, err)
	assert.Equal(t, session.ID, id)
}

func TestJWTCredentialerRejectsTamperedToken(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	creds := NewJWTCredentialer(signKey)

	cred, err := creds.Encode(newSession(time.Hour))
	require.NoError(t, err)

	tampered := []byte(cred)
	tampered[len(tampered)-1] ^= 0x01

	_, err = creds.DecodeID(string(tampered))
	require.ErrorIs(t, err, core.ErrInvalidCredential)
}

func TestJWTCredentialerRejectsForeignKey(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	cred, err := NewJWTCredentialer(otherKey).Encode(newSession(time.Hour))
	require.NoError(t, err)

	_, err = NewJWTCredentialer(signKey).DecodeID(cred)
	require.ErrorIs(t, err, core.ErrInvalidCredential)
}

func TestJWTCredentialerRejectsExpiredToken(t *testing.T) {
	signKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	creds := NewJWTCredentialer(signKey)

	cred, err := creds.Encode(newSession(-time.Minute))
	require.NoError(t, err)

	_, err = creds.DecodeID(cred)
	require.ErrorIs(t, err, core.ErrSessionExpired)
}
