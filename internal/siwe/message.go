package siwe

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Message is the structured form of an EIP-4361 sign-in message.
// REF: https://eips.ethereum.org/EIPS/eip-4361
type Message struct {
	Raw string

	Domain         string
	Address        string
	Statement      *string
	URI            url.URL
	Version        string
	ChainID        string
	Nonce          string
	IssuedAt       time.Time
	ExpirationTime *time.Time
	NotBefore      *time.Time
	RequestID      *string
	Resources      []*url.URL
}

const headerSuffix = " wants you to sign in with your Ethereum account:"

// timestampLayout is RFC 3339 with millisecond precision, matching what
// wallet-side SIWE libraries emit. Prepare always formats in UTC with this
// layout so the same field values serialize to the same bytes.
const timestampLayout = "2006-01-02T15:04:05.000Z"

func formatTimestamp(ts time.Time) string {
	return ts.UTC().Format(timestampLayout)
}

// Prepare renders the canonical message text. Field order, punctuation and
// line breaks are part of the wire contract: this exact byte string is what
// the wallet signs and what verification hashes.
func (m *Message) Prepare() string {
	var b strings.Builder

	b.WriteString(m.Domain)
	b.WriteString(headerSuffix)
	b.WriteString("\n")
	b.WriteString(m.Address)
	b.WriteString("\n\n")

	if m.Statement != nil {
		b.WriteString(*m.Statement)
		b.WriteString("\n\n")
	} else {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "URI: %s\n", m.URI.String())
	fmt.Fprintf(&b, "Version: %s\n", m.Version)
	fmt.Fprintf(&b, "Chain ID: %s\n", m.ChainID)
	fmt.Fprintf(&b, "Nonce: %s\n", m.Nonce)
	fmt.Fprintf(&b, "Issued At: %s", formatTimestamp(m.IssuedAt))

	if m.ExpirationTime != nil {
		fmt.Fprintf(&b, "\nExpiration Time: %s", formatTimestamp(*m.ExpirationTime))
	}
	if m.NotBefore != nil {
		fmt.Fprintf(&b, "\nNot Before: %s", formatTimestamp(*m.NotBefore))
	}
	if m.RequestID != nil {
		fmt.Fprintf(&b, "\nRequest ID: %s", *m.RequestID)
	}
	if len(m.Resources) > 0 {
		b.WriteString("\nResources:")
		for _, resource := range m.Resources {
			fmt.Fprintf(&b, "\n- %s", resource.String())
		}
	}

	return b.String()
}
