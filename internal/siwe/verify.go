package siwe

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/portcullis-gate/portcullis/core"
)

// issuedAtSkew bounds how far in the future a message's Issued At may lie
// before it is rejected as implausible.
const issuedAtSkew = 10 * time.Minute

// Validate checks the freshness window and the domain binding of a parsed
// message. It is independent of nonce and signature checks and runs before
// the nonce is consumed, so an out-of-window message never burns a nonce.
func (m *Message) Validate(expectedDomain string, now time.Time) error {
	// Exact, case-sensitive authority match. A message signed for one site
	// must never verify on another.
	if m.Domain != expectedDomain {
		return core.ErrDomainMismatch
	}

	if m.NotBefore != nil && now.Before(*m.NotBefore) {
		return core.ErrMessageNotYetValid
	}

	if m.ExpirationTime != nil && !m.ExpirationTime.After(now) {
		return core.ErrMessageExpired
	}

	if m.IssuedAt.After(now.Add(issuedAtSkew)) {
		return core.ErrMessageNotYetValid
	}

	return nil
}

// RecoverAddress recovers the signing account from an EIP-191 personal-sign
// signature over the raw message text.
func RecoverAddress(raw string, signatureHex string) (common.Address, error) {
	sig, err := hexutil.Decode(signatureHex)
	if err != nil {
		return common.Address{}, fmt.Errorf("decode signature: %w", core.ErrInvalidSignature)
	}
	if len(sig) != 65 {
		return common.Address{}, fmt.Errorf("signature must be 65 bytes: %w", core.ErrInvalidSignature)
	}

	// Wallets emit V as 27/28; Ecrecover wants 0/1.
	signature := make([]byte, 65)
	copy(signature, sig)
	if signature[64] >= 27 {
		signature[64] -= 27
	}

	hash := accounts.TextHash([]byte(raw))

	pubKey, err := crypto.Ecrecover(hash, signature)
	if err != nil {
		return common.Address{}, fmt.Errorf("recover public key: %w", core.ErrInvalidSignature)
	}

	return common.BytesToAddress(crypto.Keccak256(pubKey[1:])[12:]), nil
}

// VerifySignature checks that signatureHex over the raw message text was
// produced by claimedAddress. Address comparison is case-insensitive so
// checksum formatting never matters. Pure function, safe for concurrent use.
func VerifySignature(raw string, signatureHex string, claimedAddress string) error {
	recovered, err := RecoverAddress(raw, signatureHex)
	if err != nil {
		return err
	}

	if !strings.EqualFold(recovered.Hex(), claimedAddress) {
		return core.ErrInvalidSignature
	}

	return nil
}
