package credential

import (
	"github.com/google/uuid"

	"github.com/portcullis-gate/portcullis/core"
	"github.com/portcullis-gate/portcullis/ports"
)

// OpaqueCredentialer hands the raw session ID to the client. The ID is a
// random UUID, so holding the credential is the only capability needed and
// every resolve goes through the session store.
type OpaqueCredentialer struct{}

// NewOpaqueCredentialer creates a new opaque credentialer
func NewOpaqueCredentialer() ports.Credentialer {
	return &OpaqueCredentialer{}
}

// Encode returns the session ID itself
func (o *OpaqueCredentialer) Encode(session *core.Session) (string, error) {
	return session.ID, nil
}

// DecodeID checks the credential is a well-formed session ID and returns it
func (o *OpaqueCredentialer) DecodeID(credential string) (string, error) {
	if _, err := uuid.Parse(credential); err != nil {
		return "", core.ErrInvalidCredential
	}

	return credential, nil
}
