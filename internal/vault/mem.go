package vault

import (
	"sort"
	"sync"
)

// MemBackend is an in-memory Backend with an optional byte quota.
// It doubles as the test standin and as a session-scoped secondary store.
type MemBackend struct {
	mu    sync.Mutex
	data  map[string]string
	quota int // 0 means unlimited
}

// NewMemBackend returns an empty unbounded in-memory backend.
func NewMemBackend() *MemBackend {
	return &MemBackend{data: make(map[string]string)}
}

// NewMemBackendWithQuota returns an in-memory backend that rejects writes
// once the total stored bytes (keys excluded) would exceed quota.
func NewMemBackendWithQuota(quota int) *MemBackend {
	return &MemBackend{data: make(map[string]string), quota: quota}
}

// Get returns the value stored under key.
func (b *MemBackend) Get(key string) (string, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	value, ok := b.data[key]

	return value, ok, nil
}

// Set stores value under key, enforcing the quota if one is configured.
func (b *MemBackend) Set(key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.quota > 0 {
		total := len(value)

		for existing, stored := range b.data {
			if existing == key {
				continue
			}

			total += len(stored)
		}

		if total > b.quota {
			return ErrQuotaExceeded
		}
	}

	b.data[key] = value

	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (b *MemBackend) Delete(key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.data, key)

	return nil
}

// Clear removes every entry.
func (b *MemBackend) Clear() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.data = make(map[string]string)

	return nil
}

// Keys returns all stored keys in sorted order.
func (b *MemBackend) Keys() ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	keys := make([]string, 0, len(b.data))
	for key := range b.data {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys, nil
}
