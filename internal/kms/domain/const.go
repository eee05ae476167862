package domain

import "fmt"

// Environment represents the runtime environment the service operates in.
//
// The environment drives security policy: production enforces externally
// supplied secrets and per-subject keying, while development accepts
// synthesized secrets and uses coarser per-role keying. Every issued token
// embeds the environment it was issued in, and verification rejects tokens
// from a different environment.
type Environment string

const (
	// Production is the strict environment: secrets must be externally
	// supplied, keys are derived per subject, and the rotation sweeper runs.
	Production Environment = "production"

	// Development is the permissive environment: missing secrets are
	// synthesized at startup and keys are derived per role.
	Development Environment = "development"
)

// ParseEnvironment validates an environment string from configuration.
// Unknown values are rejected at startup rather than silently treated as
// development.
func ParseEnvironment(s string) (Environment, error) {
	switch Environment(s) {
	case Production:
		return Production, nil
	case Development:
		return Development, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEnvironment, s)
	}
}

// KeyType classifies what a derived key is for. The key type is mixed into
// the derivation context, so keys of different types never collide even for
// identical context strings.
type KeyType string

const (
	// KeyTypeMaster marks material derived directly for the service itself.
	KeyTypeMaster KeyType = "master"
	// KeyTypeUser marks per-subject signing keys (production keying).
	KeyTypeUser KeyType = "user"
	// KeyTypeRole marks per-role signing keys (development keying).
	KeyTypeRole KeyType = "role"
	// KeyTypeSession is reserved for short-lived session keys.
	KeyTypeSession KeyType = "session"
)

// Role identifies a dispatch platform subject class.
type Role string

const (
	RolePatient   Role = "patient"
	RoleAmbulance Role = "ambulance"
	RoleHospital  Role = "hospital"
	RoleAdmin     Role = "admin"
)

// Roles is the fixed set of valid subject roles.
var Roles = []Role{RolePatient, RoleAmbulance, RoleHospital, RoleAdmin}

// IsValid reports whether the role belongs to the fixed role set.
func (r Role) IsValid() bool {
	switch r {
	case RolePatient, RoleAmbulance, RoleHospital, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole validates a role string from external input.
func ParseRole(s string) (Role, error) {
	role := Role(s)
	if !role.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return role, nil
}

// SigningAlgorithm is the only algorithm derived keys are used with.
const SigningAlgorithm = "HMAC-SHA256"

// TokenIssuer is the "iss" claim on every issued token.
const TokenIssuer = "EmergencyConnect"

// TokenAudience returns the environment-scoped "aud" claim.
func TokenAudience(env Environment) string {
	return fmt.Sprintf("%s-%s", TokenIssuer, env)
}
