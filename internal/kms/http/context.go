// Package http provides HTTP handlers and middleware for key management operations.
package http

import (
	"context"

	"github.com/emergencyconnect/kms/internal/kms/domain"
)

// subjectKey is a context key type for storing authenticated subjects.
type subjectKey struct{}

// WithSubject stores an authenticated subject in the context.
// Called by the authentication middleware after successful token verification.
func WithSubject(ctx context.Context, subject *domain.SubjectClaims) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// GetSubject retrieves the authenticated subject from the context.
// Returns (subject, true) if present, or (nil, false) if no subject was set.
func GetSubject(ctx context.Context) (*domain.SubjectClaims, bool) {
	subject, ok := ctx.Value(subjectKey{}).(*domain.SubjectClaims)
	return subject, ok
}
