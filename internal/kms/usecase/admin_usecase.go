package usecase

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// adminUseCase implements AdminUseCase over the key cache.
type adminUseCase struct {
	keyStore service.KeyStore
	logger   *slog.Logger
}

// requireAdmin gates administrative operations on the caller's role.
func (a *adminUseCase) requireAdmin(caller *domain.SubjectClaims) error {
	if caller == nil || caller.Role != domain.RoleAdmin {
		return domain.ErrAdminRequired
	}
	return nil
}

// Metrics returns a snapshot of the current key cache. The snapshot covers
// cached entries only; evicted keys leave no trace.
func (a *adminUseCase) Metrics(
	ctx context.Context,
	caller *domain.SubjectClaims,
) (*service.Stats, error) {
	if err := a.requireAdmin(caller); err != nil {
		return nil, err
	}

	stats := a.keyStore.Stats()
	return &stats, nil
}

// RevokeUserKeys evicts every cached key for a user, across roles.
//
// Eviction removes the cached material but cannot recall a key derived
// deterministically: the next use for the same subject re-derives identical
// key bytes under a fresh key id. Revocation here bounds the cached
// lifetime; invalidating outstanding tokens is the identity service's job.
func (a *adminUseCase) RevokeUserKeys(
	ctx context.Context,
	caller *domain.SubjectClaims,
	userID string,
) (int, error) {
	if err := a.requireAdmin(caller); err != nil {
		return 0, err
	}

	id, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidUserID
	}

	removed := a.keyStore.RemoveByPrefix(domain.UserKeyPrefix(id))

	a.logger.Info("user signing keys revoked",
		slog.Int64("user_id", id),
		slog.Int("removed", removed),
		slog.Int64("caller_id", caller.ID),
	)

	return removed, nil
}

// RevokeRoleKeys evicts the cached signing key for a role.
func (a *adminUseCase) RevokeRoleKeys(
	ctx context.Context,
	caller *domain.SubjectClaims,
	role string,
) (int, error) {
	if err := a.requireAdmin(caller); err != nil {
		return 0, err
	}

	parsed, err := domain.ParseRole(role)
	if err != nil {
		return 0, err
	}

	removed := 0
	if a.keyStore.Remove(domain.RoleCacheKey(parsed)) {
		removed = 1
	}

	a.logger.Info("role signing key revoked",
		slog.String("role", string(parsed)),
		slog.Int("removed", removed),
		slog.Int64("caller_id", caller.ID),
	)

	return removed, nil
}

// NewAdminUseCase creates a new AdminUseCase with the provided dependencies.
func NewAdminUseCase(keyStore service.KeyStore, logger *slog.Logger) AdminUseCase {
	return &adminUseCase{
		keyStore: keyStore,
		logger:   logger,
	}
}
