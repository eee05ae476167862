package usecase

import (
	"context"
	"time"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
	"github.com/emergencyconnect/kms/internal/metrics"
)

// tokenUseCaseWithMetrics decorates TokenUseCase with metrics instrumentation.
type tokenUseCaseWithMetrics struct {
	next    TokenUseCase
	metrics metrics.BusinessMetrics
}

// NewTokenUseCaseWithMetrics wraps a TokenUseCase with metrics recording.
func NewTokenUseCaseWithMetrics(useCase TokenUseCase, m metrics.BusinessMetrics) TokenUseCase {
	return &tokenUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Issue records metrics for token issuance operations.
func (t *tokenUseCaseWithMetrics) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	start := time.Now()
	output, err := t.next.Issue(ctx, input)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "kms", "token_issue", status)
	t.metrics.RecordDuration(ctx, "kms", "token_issue", time.Since(start), status)

	return output, err
}

// Verify records metrics for token verification operations.
func (t *tokenUseCaseWithMetrics) Verify(
	ctx context.Context,
	tokenString string,
) (*domain.TokenClaims, error) {
	start := time.Now()
	claims, err := t.next.Verify(ctx, tokenString)

	status := "success"
	if err != nil {
		status = "error"
	}

	t.metrics.RecordOperation(ctx, "kms", "token_verify", status)
	t.metrics.RecordDuration(ctx, "kms", "token_verify", time.Since(start), status)

	return claims, err
}

// adminUseCaseWithMetrics decorates AdminUseCase with metrics instrumentation.
type adminUseCaseWithMetrics struct {
	next    AdminUseCase
	metrics metrics.BusinessMetrics
}

// NewAdminUseCaseWithMetrics wraps an AdminUseCase with metrics recording.
func NewAdminUseCaseWithMetrics(useCase AdminUseCase, m metrics.BusinessMetrics) AdminUseCase {
	return &adminUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Metrics records metrics for key cache snapshot operations.
func (a *adminUseCaseWithMetrics) Metrics(
	ctx context.Context,
	caller *domain.SubjectClaims,
) (*service.Stats, error) {
	start := time.Now()
	stats, err := a.next.Metrics(ctx, caller)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "kms", "cache_metrics", status)
	a.metrics.RecordDuration(ctx, "kms", "cache_metrics", time.Since(start), status)

	return stats, err
}

// RevokeUserKeys records metrics for user key revocation operations.
func (a *adminUseCaseWithMetrics) RevokeUserKeys(
	ctx context.Context,
	caller *domain.SubjectClaims,
	userID string,
) (int, error) {
	start := time.Now()
	removed, err := a.next.RevokeUserKeys(ctx, caller, userID)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "kms", "revoke_user_keys", status)
	a.metrics.RecordDuration(ctx, "kms", "revoke_user_keys", time.Since(start), status)

	return removed, err
}

// RevokeRoleKeys records metrics for role key revocation operations.
func (a *adminUseCaseWithMetrics) RevokeRoleKeys(
	ctx context.Context,
	caller *domain.SubjectClaims,
	role string,
) (int, error) {
	start := time.Now()
	removed, err := a.next.RevokeRoleKeys(ctx, caller, role)

	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "kms", "revoke_role_keys", status)
	a.metrics.RecordDuration(ctx, "kms", "revoke_role_keys", time.Since(start), status)

	return removed, err
}
