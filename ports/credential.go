package ports

import "github.com/portcullis-gate/portcullis/core"

// Credentialer converts between session records and the opaque credential
// handed to the client. Implementations must produce unguessable,
// tamper-evident credentials.
type Credentialer interface {
	// Encode produces the client-facing credential for a session
	Encode(session *core.Session) (string, error)

	// DecodeID extracts and authenticates the session ID carried by a
	// credential. It does not consult the session store.
	DecodeID(credential string) (string, error)
}
