package service

import (
	"sync"
	"time"

	"github.com/emergencyconnect/kms/internal/kms/domain"
)

// MemoryKeyStore is the process-local KeyStore implementation: a mutex
// guarded map from cache key to derived key material. It owns the master
// secret and salt, so callers never touch raw secret inputs.
//
// Eviction here is bookkeeping, not revocation: the derivation function is
// pure, so any evicted entry re-derives to identical key bytes on next use.
// Tokens signed with an evicted key keep verifying. Invalidating tokens for
// real requires rotating the master secret.
type MemoryKeyStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.KeyMaterial

	policy       domain.Policy
	masterSecret []byte
	salt         []byte
	now          func() time.Time
}

// NewMemoryKeyStore creates an empty in-memory key store.
func NewMemoryKeyStore(policy domain.Policy, masterSecret, salt []byte) *MemoryKeyStore {
	return NewMemoryKeyStoreWithClock(policy, masterSecret, salt, func() time.Time {
		return time.Now().UTC()
	})
}

// NewMemoryKeyStoreWithClock is like NewMemoryKeyStore with an injected
// clock, letting tests advance virtual time instead of sleeping.
func NewMemoryKeyStoreWithClock(
	policy domain.Policy,
	masterSecret, salt []byte,
	now func() time.Time,
) *MemoryKeyStore {
	return &MemoryKeyStore{
		entries:      make(map[string]*domain.KeyMaterial),
		policy:       policy,
		masterSecret: masterSecret,
		salt:         salt,
		now:          now,
	}
}

// GetOrCreate returns the key for cacheKey, deriving it when the entry is
// absent or outside the rotation window. A stale entry is replaced in place:
// same key bytes (derivation is deterministic), fresh key id.
//
// The returned slice is a copy. Eviction zeroes the store's own storage, so
// handing out the cached slice would let a concurrent revoke or sweep wipe
// key bytes out from under an in-flight sign or verify.
func (s *MemoryKeyStore) GetOrCreate(
	cacheKey, keyContext string,
	keyType domain.KeyType,
) ([]byte, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if entry, ok := s.entries[cacheKey]; ok && s.policy.Valid(entry.Metadata.Created, now) {
		entry.Metadata.LastUsed = now
		return append([]byte(nil), entry.Key...), entry.Metadata.KeyID, nil
	}

	key := DeriveKey(s.masterSecret, s.salt, s.policy.Environment, keyType, keyContext)

	keyID, err := domain.NewKeyID(s.policy.Environment, now)
	if err != nil {
		domain.Zero(key)
		return nil, "", err
	}

	if stale, ok := s.entries[cacheKey]; ok {
		domain.Zero(stale.Key)
	}

	s.entries[cacheKey] = &domain.KeyMaterial{
		Key: key,
		Metadata: domain.KeyMetadata{
			KeyID:       keyID,
			Algorithm:   domain.SigningAlgorithm,
			Created:     now,
			LastUsed:    now,
			Environment: s.policy.Environment,
			KeyType:     keyType,
		},
	}

	return append([]byte(nil), key...), keyID, nil
}

// Remove evicts a single entry, zeroing its key bytes.
func (s *MemoryKeyStore) Remove(cacheKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[cacheKey]
	if !ok {
		return false
	}
	domain.Zero(entry.Key)
	delete(s.entries, cacheKey)
	return true
}

// RemoveByPrefix evicts every entry whose cache key starts with prefix.
func (s *MemoryKeyStore) RemoveByPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for cacheKey, entry := range s.entries {
		if len(cacheKey) >= len(prefix) && cacheKey[:len(prefix)] == prefix {
			domain.Zero(entry.Key)
			delete(s.entries, cacheKey)
			removed++
		}
	}
	return removed
}

// SweepStale evicts every entry outside the rotation window.
func (s *MemoryKeyStore) SweepStale() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for cacheKey, entry := range s.entries {
		if !s.policy.Valid(entry.Metadata.Created, now) {
			domain.Zero(entry.Key)
			delete(s.entries, cacheKey)
			removed++
		}
	}
	return removed
}

// Stats returns a snapshot of current cache contents.
func (s *MemoryKeyStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byType := make(map[domain.KeyType]int)
	for _, entry := range s.entries {
		byType[entry.Metadata.KeyType]++
	}

	return Stats{
		TotalKeys:   len(s.entries),
		KeysByType:  byType,
		Environment: s.policy.Environment,
	}
}

// Metadata returns a copy of the metadata for a cache key, for tests and
// diagnostics.
func (s *MemoryKeyStore) Metadata(cacheKey string) (domain.KeyMetadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[cacheKey]
	if !ok {
		return domain.KeyMetadata{}, false
	}
	return entry.Metadata, true
}

// Close zeroes all key material and the secret inputs. The store must not
// be used after Close; it exists for clean shutdown.
func (s *MemoryKeyStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for cacheKey, entry := range s.entries {
		domain.Zero(entry.Key)
		delete(s.entries, cacheKey)
	}
	domain.Zero(s.masterSecret)
	domain.Zero(s.salt)
}
