package siwe

import (
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/portcullis-gate/portcullis/core"
)

// signText produces an EIP-191 personal-sign signature the way a wallet
// would, with V in 27/28 form.
func signText(t *testing.T, privKeyHex string, raw string) string {
	t.Helper()

	privKey, err := crypto.HexToECDSA(privKeyHex)
	require.NoError(t, err)

	sig, err := crypto.Sign(accounts.TextHash([]byte(raw)), privKey)
	require.NoError(t, err)
	sig[64] += 27

	return hexutil.Encode(sig)
}

func testMessage(t *testing.T, address string) *Message {
	t.Helper()

	return &Message{
		Domain:   "example.com",
		Address:  address,
		URI:      mustURL(t, "https://example.com"),
		Version:  "1",
		ChainID:  "1",
		Nonce:    "abc123",
		IssuedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestVerifySignature(t *testing.T) {
	privKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	privKeyHex := hexutil.Encode(crypto.FromECDSA(privKey))[2:]
	address := crypto.PubkeyToAddress(privKey.PublicKey).Hex()

	raw := testMessage(t, address).Prepare()
	signature := signText(t, privKeyHex, raw)

	t.Run("accepts a valid signature", func(t *testing.T) {
		require.NoError(t, VerifySignature(raw, signature, address))
	})

	t.Run("address comparison ignores checksum casing", func(t *testing.T) {
		require.NoError(t, VerifySignature(raw, signature, core.NormalizeAddress(address)))
	})

	t.Run("accepts V in 0/1 form", func(t *testing.T) {
		sig, err := hexutil.Decode(signature)
		require.NoError(t, err)
		sig[64] -= 27

		require.NoError(t, VerifySignature(raw, hexutil.Encode(sig), address))
	})

	t.Run("rejects a single-byte tamper of the signed text", func(t *testing.T) {
		tampered := []byte(raw)
		tampered[len(tampered)-1] ^= 0x01

		err := VerifySignature(string(tampered), signature, address)
		require.ErrorIs(t, err, core.ErrInvalidSignature)
	})

	t.Run("rejects a signature from another key", func(t *testing.T) {
		otherKey, err := crypto.GenerateKey()
		require.NoError(t, err)
		otherHex := hexutil.Encode(crypto.FromECDSA(otherKey))[2:]

		err = VerifySignature(raw, signText(t, otherHex, raw), address)
		require.ErrorIs(t, err, core.ErrInvalidSignature)
	})

	t.Run("rejects malformed signature bytes", func(t *testing.T) {
		for _, sig := range []string{"", "not-hex", "0x1234", "0x" + strings.Repeat("00", 64)} {
			err := VerifySignature(raw, sig, address)
			require.ErrorIs(t, err, core.ErrInvalidSignature)
		}
	})

	t.Run("rejects a corrupted signature", func(t *testing.T) {
		sig, err := hexutil.Decode(signature)
		require.NoError(t, err)
		sig[10] ^= 0xff

		err = VerifySignature(raw, hexutil.Encode(sig), address)
		require.ErrorIs(t, err, core.ErrInvalidSignature)
	})
}

// Reference vectors: messages signed externally with the key for
// 0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E. They pin down the hashing
// scheme; a wrong byte-order or encoding assumption fails these.
func TestVerifySignatureReferenceVectors(t *testing.T) {
	vectors := []struct {
		message   string
		signature string
	}{
		{
			message:   "example.com wants you to sign in with your Ethereum account:\n0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E\n\nSign in to Example App\n\nURI: https://example.com\nVersion: 1\nChain ID: 1\nNonce: 12345678\nIssued At: 2025-01-01T00:00:00.000Z",
			signature: "0xee337880f195524c156b8cc5f425ffcedb9d94638a91fa41ba72e26d93f04c9d1c7bca7020071c34ef7527ed6389ee24b59de79deab4e9e8251e6ca1e195a56a1b",
		},
		{
			message:   "example.com wants you to sign in with your Ethereum account:\n0x196a28d05bA75C8dC35B0F6e71DD622D1aC82b7E\n\nURI: https://example.com\nVersion: 1\nChain ID: 1\nNonce: 12345678\nIssued At: 2025-01-01T00:00:00.000Z",
			signature: "0x0851224c203d08ced345bc99e66ac531eafbbb54eff94f7297b54ec19a0db7e879c4d246d45e0e13c9c2801db1f71f283c373b8c10cc0a91fe6418220a0aa5391b",
		},
	}

	for _, vector := range vectors {
		msg, err := Parse(vector.message)
		require.NoError(t, err)

		require.NoError(t, VerifySignature(msg.Raw, vector.signature, msg.Address))

		recovered, err := RecoverAddress(msg.Raw, vector.signature)
		require.NoError(t, err)
		require.True(t, strings.EqualFold(msg.Address, recovered.Hex()))
	}
}
