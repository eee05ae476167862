package domain

import "time"

// developmentRotationInterval is the fixed staleness window for development
// caches. Development keys are per-role and low-value, so the window is
// deliberately wide.
const developmentRotationInterval = 7 * 24 * time.Hour

// Policy is the environment-conditional rule set, selected once at startup
// and injected into the issuer, verifier, and sweeper. Centralizing the
// rules here keeps call sites free of environment string branching.
type Policy struct {
	// Environment the policy was built for.
	Environment Environment
	// RotationInterval is the staleness window for cached keys. Entries
	// older than this are treated as cache misses and re-derived.
	RotationInterval time.Duration
	// RequireExternalSecrets forces the master secret and salt to come from
	// configuration instead of being synthesized.
	RequireExternalSecrets bool
	// MinMasterSecretLength is the minimum master secret length in bytes;
	// zero disables the check.
	MinMasterSecretLength int
	// SweepEnabled controls whether the background rotation sweeper runs.
	SweepEnabled bool
}

// PolicyFor builds the policy for an environment. The rotation interval
// applies to production only; development always uses a fixed 7-day window
// and never runs the sweeper.
func PolicyFor(env Environment, rotationInterval time.Duration) Policy {
	if env == Production {
		return Policy{
			Environment:            Production,
			RotationInterval:       rotationInterval,
			RequireExternalSecrets: true,
			MinMasterSecretLength:  64,
			SweepEnabled:           true,
		}
	}
	return Policy{
		Environment:      Development,
		RotationInterval: developmentRotationInterval,
	}
}

// SubjectKeying resolves the keying strategy for a subject under this
// policy: production derives one key per (subject, role) pair, development
// derives one key per role. Returns the cache key, the derivation context,
// and the key type.
func (p Policy) SubjectKeying(userID int64, role Role) (cacheKey, context string, keyType KeyType) {
	if p.Environment == Production {
		return UserCacheKey(userID, role), UserKeyContext(userID, role), KeyTypeUser
	}
	return RoleCacheKey(role), RoleKeyContext(role), KeyTypeRole
}

// Valid reports whether a cache entry created at the given time is still
// inside the rotation window.
func (p Policy) Valid(created, now time.Time) bool {
	return now.Sub(created) < p.RotationInterval
}
