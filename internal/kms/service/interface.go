// Package service provides the cryptographic core of the key management
// service: deterministic key derivation, secret loading, and the in-memory
// key store.
package service

import (
	"context"

	"github.com/emergencyconnect/kms/internal/kms/domain"
)

// KeyStore is the mutable cache of derived signing keys.
//
// The store is an optimization over a pure derivation function, not a
// source of truth: for a fixed (master secret, salt, context, key type),
// re-creation after any eviction yields bit-identical key bytes. Removing
// an entry therefore never invalidates tokens signed with it; it only
// forces a re-derivation (and a fresh key id) on next use.
type KeyStore interface {
	// GetOrCreate returns the cached key for cacheKey, deriving and caching
	// it when absent or stale. A hit updates the entry's last-used time.
	GetOrCreate(cacheKey, keyContext string, keyType domain.KeyType) (key []byte, keyID string, err error)

	// Remove evicts a single entry, reporting whether it existed.
	Remove(cacheKey string) bool

	// RemoveByPrefix evicts every entry whose cache key starts with prefix
	// and returns the number of entries removed.
	RemoveByPrefix(prefix string) int

	// SweepStale evicts every entry outside the rotation window and returns
	// the number of entries removed.
	SweepStale() int

	// Stats returns a point-in-time snapshot of the cache contents.
	Stats() Stats
}

// Stats is a snapshot of the key cache, reflecting current contents only.
type Stats struct {
	TotalKeys   int
	KeysByType  map[domain.KeyType]int
	Environment domain.Environment
}

// KMSKeeper abstracts an opened KMS keeper used to decrypt the master
// secret at startup. *secrets.Keeper from gocloud.dev implements it.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeeperOpener opens KMS keepers by URI.
type KeeperOpener interface {
	// OpenKeeper opens a keeper for the configured KMS provider.
	// Returns an error if the key URI is invalid or the connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}
