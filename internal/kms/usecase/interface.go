// Package usecase defines business logic interfaces for key management
// operations: token issuance and verification, administrative key
// revocation, and the background rotation sweep.
package usecase

import (
	"context"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// TokenSigner defines the low-level sign and verify operations the token
// use case delegates to.
type TokenSigner interface {
	// Sign produces a signed compact token for the given claims.
	Sign(claims *domain.TokenClaims, key []byte) (string, error)

	// PeekClaims decodes a token without verifying its signature. Callers
	// must re-verify before trusting any claim.
	PeekClaims(tokenString string) (*domain.TokenClaims, error)

	// Verify checks signature, issuer, environment audience, and expiry.
	Verify(tokenString string, key []byte, env domain.Environment) (*domain.TokenClaims, error)
}

// TokenUseCase defines business logic operations for bearer tokens.
type TokenUseCase interface {
	// Issue derives (or reuses) the signing key for the subject under the
	// active keying policy and returns a signed token.
	//
	// Security Note: the derived key never appears in the output, in logs,
	// or in errors. Only the token, its key id, and its expiry are returned.
	Issue(ctx context.Context, input *domain.IssueTokenInput) (*domain.IssueTokenOutput, error)

	// Verify validates a token issued by this service and returns its
	// claims.
	//
	// Returns ErrMalformedToken when the token cannot be decoded or lacks
	// the key id claim, ErrEnvironmentMismatch when it was issued for a
	// different environment, and ErrInvalidToken for every other failure.
	// Signature, issuer, audience, and expiry failures are deliberately
	// indistinguishable to the caller.
	Verify(ctx context.Context, tokenString string) (*domain.TokenClaims, error)
}

// AdminUseCase defines administrative operations over the key cache. Every
// operation requires the caller to hold the admin role.
type AdminUseCase interface {
	// Metrics returns a snapshot of the current key cache.
	Metrics(ctx context.Context, caller *domain.SubjectClaims) (*service.Stats, error)

	// RevokeUserKeys evicts every cached key for the given user id, across
	// roles, and returns the number of entries removed. Eviction forces
	// re-derivation on next use; it does not invalidate outstanding tokens.
	RevokeUserKeys(ctx context.Context, caller *domain.SubjectClaims, userID string) (int, error)

	// RevokeRoleKeys evicts the cached role key for the given role and
	// returns the number of entries removed.
	RevokeRoleKeys(ctx context.Context, caller *domain.SubjectClaims, role string) (int, error)
}
