package core

import "errors"

var (
	// ErrAuthenticationFailed is the only error surfaced to untrusted
	// callers; the finer-grained reasons below stay internal
	ErrAuthenticationFailed = errors.New("authentication failed")

	ErrMalformedMessage   = errors.New("malformed sign-in message")
	ErrDomainMismatch     = errors.New("message domain does not match this host")
	ErrMessageExpired     = errors.New("message has expired")
	ErrMessageNotYetValid = errors.New("message is not yet valid")

	ErrNonceNotFound = errors.New("nonce not found")
	ErrNonceExpired  = errors.New("nonce has expired")
	ErrNonceConsumed = errors.New("nonce has already been used")

	ErrInvalidSignature = errors.New("invalid signature")

	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session has expired")

	ErrInvalidCredential = errors.New("invalid session credential")

	ErrStoreOperationFailed = errors.New("store operation failed")
)
