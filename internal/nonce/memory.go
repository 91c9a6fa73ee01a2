package nonce

import (
	"context"
	"sync"
	"time"
)

type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time

	stop chan struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]time.Time),
		stop:    make(chan struct{}),
	}
}

func (s *MemoryStore) Put(ctx context.Context, nonce string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[nonce] = time.Now().Add(ttl)
	return nil
}

func (s *MemoryStore) Consume(ctx context.Context, nonce string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, exists := s.entries[nonce]
	if !exists {
		return false, nil
	}
	delete(s.entries, nonce)
	if time.Now().After(expiry) {
		return false, nil
	}
	return true, nil
}

func (s *MemoryStore) Exists(ctx context.Context, nonce string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiry, exists := s.entries[nonce]
	return exists && time.Now().Before(expiry)
}

func (s *MemoryStore) ExpireNonces(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for nonce, expiry := range s.entries {
		if now.After(expiry) {
			delete(s.entries, nonce)
		}
	}
	return nil
}

func (s *MemoryStore) janitor() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.ExpireNonces(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *MemoryStore) Close() {
	close(s.stop)
}
