package credential

import (
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/ports"
)

const AudienceSession = "portcullis:session"

// SessionClaims combines standard claims with session-specific ones
type SessionClaims struct {
	jwt.RegisteredClaims
	ChainID string `json:"cid,omitempty"`
}

// JWTCredentialer encodes the session as an ES256-signed JWT whose jti is
// the session ID. The token is self-verifying, but resolution still consults
// the session store so revocation takes effect immediately.
type JWTCredentialer struct {
	signKey *ecdsa.PrivateKey
}

// NewJWTCredentialer creates a new JWT credentialer
func NewJWTCredentialer(signKey *ecdsa.PrivateKey) ports.Credentialer {
	return &JWTCredentialer{signKey: signKey}
}

// Encode converts a session to a signed JWT
func (j *JWTCredentialer) Encode(session *core.Session) (string, error) {
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.Address,
			ID:        session.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceSession},
		},
		ChainID: session.ChainID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signedToken, err := token.SignedString(j.signKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}

	return signedToken, nil
}

// DecodeID verifies the token signature and returns the embedded session ID
func (j *JWTCredentialer) DecodeID(credential string) (string, error) {
	token, err := jwt.ParseWithClaims(credential, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return &j.signKey.PublicKey, nil
	}, jwt.WithAudience(AudienceSession))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", core.ErrSessionExpired
		}
		return "", core.ErrInvalidCredential
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return "", core.ErrInvalidCredential
	}

	return claims.ID, nil
}
