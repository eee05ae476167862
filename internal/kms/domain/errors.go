package domain

import (
	"github.com/emergencyconnect/kms/internal/errors"
)

// Key management error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so handlers can map them to HTTP status codes without inspecting text.
// Token verification failures deliberately collapse into ErrInvalidToken:
// distinguishing a bad signature from a wrong issuer or an expired claim
// would give an attacker a verification oracle.
var (
	// ErrUnknownEnvironment indicates the ENVIRONMENT value is not a known
	// environment. Fatal at startup.
	ErrUnknownEnvironment = errors.Wrap(errors.ErrConfiguration, "unknown environment")

	// ErrMasterSecretRequired indicates the master secret is missing in
	// production. Fatal at startup.
	ErrMasterSecretRequired = errors.Wrap(
		errors.ErrConfiguration,
		"KMS_MASTER_KEY is required in production",
	)

	// ErrMasterSecretTooShort indicates the production master secret does
	// not meet the minimum length. Fatal at startup.
	ErrMasterSecretTooShort = errors.Wrap(
		errors.ErrConfiguration,
		"KMS_MASTER_KEY must be at least 64 characters in production",
	)

	// ErrDerivationSaltRequired indicates the derivation salt is missing in
	// production. Fatal at startup.
	ErrDerivationSaltRequired = errors.Wrap(
		errors.ErrConfiguration,
		"KMS_DERIVATION_SALT is required in production",
	)

	// ErrEnvironmentMismatch indicates a token's embedded environment does
	// not match the verifier's runtime environment.
	ErrEnvironmentMismatch = errors.Wrap(errors.ErrUnauthorized, "token environment mismatch")

	// ErrMalformedToken indicates a token is structurally unusable, such as
	// missing the key id claim needed to reconstruct the verification key.
	ErrMalformedToken = errors.Wrap(errors.ErrUnauthorized, "malformed token")

	// ErrInvalidToken is the generic verification failure covering bad
	// signatures, wrong issuer or audience, and expiry. The specific cause
	// is never disclosed to the caller.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid or expired token")

	// ErrAdminRequired indicates an administrative operation was attempted by
	// a subject without the admin role.
	ErrAdminRequired = errors.Wrap(errors.ErrForbidden, "admin role required")

	// ErrInvalidUserID indicates a revoke operation received a non-numeric
	// user id.
	ErrInvalidUserID = errors.Wrap(errors.ErrInvalidInput, "user id must be numeric")

	// ErrInvalidRole indicates a role outside the fixed role set.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "unknown role")
)
