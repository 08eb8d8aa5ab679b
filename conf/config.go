package conf

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the runtime configuration, loaded from the environment with
// an optional .env file for local development.
type Config struct {
	ListenAddr string `envconfig:"LISTEN_ADDR" default:":9000"`

	// ExpectedDomain pins the domain signed messages must be bound to. When
	// empty the request Host header is used instead, which is only safe
	// behind a proxy that sets it
	ExpectedDomain string `envconfig:"EXPECTED_DOMAIN"`

	// RedisURL selects the Redis-backed stores and event transport; when
	// empty, everything runs in memory on a single instance
	RedisURL string `envconfig:"REDIS_URL"`

	NonceTTL   time.Duration `envconfig:"NONCE_TTL" default:"5m"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"24h"`

	// CredentialKind picks the session credential codec: "opaque" for
	// stored-token lookup, "jwt" for a signed self-verifying token
	CredentialKind string `envconfig:"CREDENTIAL_KIND" default:"opaque"`

	// SessionSigningKey is a hex-encoded ECDSA private key for the jwt
	// credential kind; an ephemeral key is generated when empty
	SessionSigningKey string `envconfig:"SESSION_SIGNING_KEY"`

	SecureCookie bool `envconfig:"SECURE_COOKIE" default:"false"`
}

// Load reads configuration from the environment under the PORTCULLIS prefix
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("portcullis", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if cfg.CredentialKind != "opaque" && cfg.CredentialKind != "jwt" {
		return nil, fmt.Errorf("unknown credential kind %q", cfg.CredentialKind)
	}

	return &cfg, nil
}
