package siwe

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var addressPattern = regexp.MustCompile("^0x[a-fA-F0-9]{40}$")

var domainPattern = regexp.MustCompile(`^(localhost|(?:[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,})(?::\d{1,5})?$`)

// IsValidDomain reports whether domain is a plausible authority
// (host with optional port) for the first line of a message.
func IsValidDomain(domain string) bool {
	return domainPattern.MatchString(domain)
}

func isValidChainID(value string) bool {
	// REF: https://eips.ethereum.org/EIPS/eip-155
	chainID, err := strconv.Atoi(value)
	if err != nil {
		return false
	}
	return chainID > 0
}

func parseTimestamp(value string) (time.Time, error) {
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Parse(time.RFC3339Nano, value)
	}
	return ts, nil
}

// Parse is the strict reverse of Prepare. It fails on any message that is
// missing required fields, carries malformed values, or declares a version
// other than "1".
func Parse(raw string) (*Message, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) < 6 {
		return nil, ErrMessageTooShort
	}

	header := lines[0]
	if !strings.HasSuffix(header, headerSuffix) {
		return nil, ErrInvalidHeader
	}

	domain := strings.TrimSpace(strings.TrimSuffix(header, headerSuffix))
	if !IsValidDomain(domain) {
		return nil, ErrInvalidDomain
	}

	address := strings.TrimSpace(lines[1])
	if !addressPattern.MatchString(address) {
		return nil, ErrInvalidAddress
	}

	msg := &Message{
		Raw:     raw,
		Domain:  domain,
		Address: address,
	}

	if lines[2] != "" {
		return nil, ErrThirdLineNotEmpty
	}

	startIndex := 3
	if lines[3] != "" && lines[4] == "" {
		statement := lines[3]
		msg.Statement = &statement
		startIndex = 5
	}

	inResources := false
	for i := startIndex; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if inResources {
			if after, ok := strings.CutPrefix(line, "- "); ok {
				resource := strings.TrimSpace(after)

				resourceURL, err := url.ParseRequestURI(resource)
				if err != nil {
					return nil, errInvalidResource(len(msg.Resources))
				}

				msg.Resources = append(msg.Resources, resourceURL)
				continue
			}
			inResources = false
		}

		if line == "Resources:" {
			inResources = true
			continue
		}

		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			return nil, errUnparsableLine(i)
		}

		value = strings.TrimSpace(value)

		switch key {
		case "URI":
			uri, err := url.ParseRequestURI(value)
			if err != nil {
				return nil, ErrInvalidURI
			}
			msg.URI = *uri

		case "Version":
			msg.Version = value

		case "Chain ID":
			if value == "" || !isValidChainID(value) {
				return nil, ErrInvalidChainID
			}
			msg.ChainID = value

		case "Nonce":
			msg.Nonce = value

		case "Issued At":
			ts, err := parseTimestamp(value)
			if err != nil {
				return nil, ErrInvalidIssuedAt
			}
			if ts.IsZero() {
				return nil, ErrMissingIssuedAt
			}
			msg.IssuedAt = ts

		case "Expiration Time":
			ts, err := parseTimestamp(value)
			if err != nil {
				return nil, ErrInvalidExpirationTime
			}
			if msg.IssuedAt.After(ts) {
				return nil, ErrIssuedAfterExpiration
			}
			msg.ExpirationTime = &ts

		case "Not Before":
			ts, err := parseTimestamp(value)
			if err != nil {
				return nil, ErrInvalidNotBefore
			}
			if msg.ExpirationTime != nil && ts.After(*msg.ExpirationTime) {
				return nil, ErrNotBeforeAfterExpiration
			}
			msg.NotBefore = &ts

		case "Request ID":
			msg.RequestID = &value
		}
	}

	if msg.Version != "1" {
		return nil, errUnsupportedVersion(msg.Version)
	}

	if msg.IssuedAt.IsZero() {
		return nil, ErrMissingIssuedAt
	}

	if msg.URI.String() == "" {
		return nil, ErrMissingURI
	}

	if msg.Nonce == "" {
		return nil, ErrMissingNonce
	}

	return msg, nil
}
