package nonce

import (
	"context"
	"log/slog"
	"time"

	"inmo-backoffice/internal/storage"
)

type SQLNonceStore struct {
	logger  *slog.Logger
	storage storage.Provider

	stop chan struct{}
}

// NewSQLNonceStore creates a new SQLNonceStore.
// Warning: storage.Provider must be set separately after creation.
func NewSQLNonceStore() *SQLNonceStore {
	return &SQLNonceStore{
		logger: slog.With("component", "SQLNonceStore"),
		stop:   make(chan struct{}),
	}
}

func (s *SQLNonceStore) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	expiry := time.Now().Add(ttl)
	return s.storage.CreateNonce(ctx, nonce, expiry)
}

func (s *SQLNonceStore) Consume(ctx context.Context, nonce string) (bool, error) {
	return s.storage.ConsumeNonce(ctx, nonce)
}

func (s *SQLNonceStore) Exists(ctx context.Context, nonce string) bool {
	exists, err := s.storage.ExistsNonce(ctx, nonce)
	if err != nil {
		s.logger.Error("Failed to check nonce existence", "error", err)
		return false
	}
	return exists
}

func (s *SQLNonceStore) ExpireNonces(ctx context.Context) error {
	return s.storage.ExpireNonces(ctx, time.Now())
}

func (s *SQLNonceStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := s.ExpireNonces(context.Background()); err != nil {
				s.logger.Error("Failed to expire nonces", "error", err)
			}
		case <-s.stop:
			return
		}
	}
}

func (s *SQLNonceStore) Close() {
	close(s.stop)
}
