package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/caresquare/care-directory-backend/internal/domain/providers"
)

// MemoryAdapter is an in-process CacheProvider. It backs the session store
// when Redis is unavailable and keeps session/expiry logic testable without
// a real backend. Expiry is evaluated lazily against the injected clock.
type MemoryAdapter struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   providers.Clock
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// NewMemoryAdapter creates an in-memory cache adapter
func NewMemoryAdapter(clock providers.Clock) *MemoryAdapter {
	if clock == nil {
		clock = providers.SystemClock{}
	}
	return &MemoryAdapter{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

// Get retrieves a value from cache
func (a *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	if !ok || a.expired(entry) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

// Set stores a value in cache with expiration
func (a *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	entry := memoryEntry{value: make([]byte, len(value))}
	copy(entry.value, value)

	if expirationSeconds > 0 {
		entry.expiresAt = a.clock.Now().Add(time.Duration(expirationSeconds) * time.Second)
	}

	a.mu.Lock()
	a.entries[key] = entry
	a.mu.Unlock()
	return nil
}

// Delete removes a value from cache
func (a *MemoryAdapter) Delete(ctx context.Context, key string) error {
	a.mu.Lock()
	delete(a.entries, key)
	a.mu.Unlock()
	return nil
}

// Exists checks if a key exists in cache
func (a *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	a.mu.RLock()
	entry, ok := a.entries[key]
	a.mu.RUnlock()

	return ok && !a.expired(entry), nil
}

func (a *MemoryAdapter) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && a.clock.Now().After(entry.expiresAt)
}
