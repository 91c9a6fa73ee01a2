// Package nonce tracks live session token IDs. A session JWT is valid only
// while its jti is present here; logout consumes the jti, revoking the token
// before its natural expiry.
package nonce

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"
	"time"

	"inmo-backoffice/internal/config"
	"inmo-backoffice/internal/storage"
)

var Store NonceStoreInterface

// Number of random bytes. 16 → 128-bit
const NONCE_SIZE = 16

type NonceStoreInterface interface {
	// Put stores a nonce with a TTL.
	Put(ctx context.Context, nonce string, ttl time.Duration) error
	// Consume verifies and deletes the nonce. Returns true if the nonce
	// existed, false otherwise.
	Consume(ctx context.Context, nonce string) (bool, error)

	Exists(ctx context.Context, nonce string) bool

	ExpireNonces(ctx context.Context) error
}

func generateNonceToken() (string, error) {
	b := make([]byte, NONCE_SIZE)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// Nonce creates a new nonce, stores it with the given TTL, and returns it.
func Nonce(ttl time.Duration) (string, error) {
	nonce, err := generateNonceToken()
	if err != nil {
		return "", err
	}

	ctx := context.Background()
	if err := Store.Put(ctx, nonce, ttl); err != nil {
		slog.Error("failed to store nonce", "error", err)
	}
	return nonce, nil
}

// NewStore builds the appropriate store implementation based on cfg.
func NewStore(cfg *config.Config) (NonceStoreInterface, error) {
	switch cfg.NonceStore {
	case "memory":
		return NewMemoryStore(), nil
	case "sql":
		return NewSQLNonceStore(), nil
	default:
		return nil, fmt.Errorf("unknown store type %q", cfg.NonceStore)
	}
}

func InitNonceStore(cfg *config.Config, storageProvider storage.Provider) error {
	store, err := NewStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize nonce store: %w", err)
	}

	switch s := store.(type) {
	case *SQLNonceStore:
		s.storage = storageProvider
		go s.janitor()
	case *MemoryStore:
		go s.janitor()
	}

	Store = store

	slog.Info("Initialized nonce store", "type", cfg.NonceStore)
	return nil
}
