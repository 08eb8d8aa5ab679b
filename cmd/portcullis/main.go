package main

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"math/big"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/portcullis-gate/portcullis/adapters/credential"
	"github.com/portcullis-gate/portcullis/adapters/events"
	"github.com/portcullis-gate/portcullis/adapters/store"
	"github.com/portcullis-gate/portcullis/conf"
	"github.com/portcullis-gate/portcullis/ports"
	"github.com/portcullis-gate/portcullis/service"
	"github.com/portcullis-gate/portcullis/transport/http"
)

func main() {
	cfg, err := conf.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	wmLogger := watermill.NewStdLogger(false, false)

	var (
		nonceStore   ports.NonceStore
		sessionStore ports.SessionStore
		publisher    message.Publisher
	)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("failed to parse Redis URL", zap.Error(err))
		}
		redisClient := redis.NewClient(opts)

		publisher, err = redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			logger.Fatal("failed to create Redis publisher", zap.Error(err))
		}

		nonceStore = store.NewRedisNonceStore(redisClient)
		sessionStore = store.NewRedisSessionStore(redisClient)
	} else {
		publisher = gochannel.NewGoChannel(gochannel.Config{}, wmLogger)
		nonceStore = store.NewMemoryNonceStore()
		sessionStore = store.NewMemorySessionStore()
	}

	var creds ports.Credentialer
	switch cfg.CredentialKind {
	case "jwt":
		signKey, err := loadSigningKey(cfg.SessionSigningKey)
		if err != nil {
			logger.Fatal("failed to load session signing key", zap.Error(err))
		}
		creds = credential.NewJWTCredentialer(signKey)
	default:
		creds = credential.NewOpaqueCredentialer()
	}

	sessionManager := service.NewSessionManager(sessionStore, creds, cfg.SessionTTL)
	eventPub := events.NewWatermillPublisher(publisher)

	authService := service.NewAuthService(nonceStore, sessionManager, eventPub, logger, cfg.NonceTTL)

	router := http.SetupRouter(authService, cfg.ExpectedDomain, cfg.SessionTTL, cfg.SecureCookie)

	logger.Info("starting server", zap.String("addr", cfg.ListenAddr))
	if err := router.Run(cfg.ListenAddr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

// loadSigningKey parses a hex-encoded P-256 scalar, or generates an
// ephemeral key when none is configured. An ephemeral key invalidates all
// JWT credentials on restart; set one for multi-instance deployments.
func loadSigningKey(hexKey string) (*ecdsa.PrivateKey, error) {
	if hexKey == "" {
		return ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	}

	keyBytes, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing key: %w", err)
	}

	priv := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: elliptic.P256()},
		D:         new(big.Int).SetBytes(keyBytes),
	}
	priv.PublicKey.X, priv.PublicKey.Y = elliptic.P256().ScalarBaseMult(keyBytes)
	if priv.PublicKey.X == nil {
		return nil, fmt.Errorf("invalid signing key")
	}

	return priv, nil
}
