// Package domain defines the core types of the key management service:
// environments and security policy, derived key material and its cache
// metadata, subject roles, and token claims.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// KeyMetadata describes a cached derived key. The key id is random per
// (re)creation and exists purely for tracing and metrics: two entries
// holding bit-identical key bytes (re-derived for the same context after an
// eviction) carry different key ids.
type KeyMetadata struct {
	KeyID       string
	Algorithm   string
	Created     time.Time
	LastUsed    time.Time
	Environment Environment
	KeyType     KeyType
}

// KeyMaterial is a derived symmetric key together with its cache metadata.
// The key bytes are a pure function of (master secret, salt, environment,
// key type, context); the cached copy is a memoization, not a source of
// truth.
type KeyMaterial struct {
	Key      []byte
	Metadata KeyMetadata
}

// NewKeyID mints a key id in the form "kms_{env}_{unixMillis}_{8 hex}".
// The random suffix keeps ids unique within a millisecond.
func NewKeyID(env Environment, now time.Time) (string, error) {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("failed to generate key id: %w", err)
	}
	return fmt.Sprintf("kms_%s_%d_%s", env, now.UnixMilli(), hex.EncodeToString(suffix)), nil
}

// UserCacheKey returns the cache key for a per-subject signing key.
func UserCacheKey(userID int64, role Role) string {
	return fmt.Sprintf("user_%d_%s", userID, role)
}

// UserKeyPrefix returns the cache key prefix matching every key derived for
// the given subject, across roles.
func UserKeyPrefix(userID int64) string {
	return fmt.Sprintf("user_%d_", userID)
}

// RoleCacheKey returns the cache key for a per-role signing key.
func RoleCacheKey(role Role) string {
	return fmt.Sprintf("role_%s", role)
}

// UserKeyContext returns the derivation context for a per-subject key.
// The context is never reversible to the master secret.
func UserKeyContext(userID int64, role Role) string {
	return fmt.Sprintf("%d:%s", userID, role)
}

// RoleKeyContext returns the derivation context for a per-role key.
func RoleKeyContext(role Role) string {
	return string(role)
}
