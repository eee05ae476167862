package usecase

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergencyconnect/kms/internal/errors"
	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func adminCaller() *domain.SubjectClaims {
	return &domain.SubjectClaims{ID: 100, Username: "ops", Role: domain.RoleAdmin}
}

// newAdminFixture builds an admin use case over a production store seeded
// with keys for two users and one role.
func newAdminFixture(t *testing.T) (AdminUseCase, *service.MemoryKeyStore) {
	t.Helper()

	policy := domain.PolicyFor(domain.Production, 24*time.Hour)
	store := service.NewMemoryKeyStore(policy, bytes.Repeat([]byte("a"), 64), []byte("s"))

	seed := []struct {
		cacheKey string
		context  string
		keyType  domain.KeyType
	}{
		{domain.UserCacheKey(1, domain.RoleAmbulance), domain.UserKeyContext(1, domain.RoleAmbulance), domain.KeyTypeUser},
		{domain.UserCacheKey(1, domain.RoleHospital), domain.UserKeyContext(1, domain.RoleHospital), domain.KeyTypeUser},
		{domain.UserCacheKey(2, domain.RolePatient), domain.UserKeyContext(2, domain.RolePatient), domain.KeyTypeUser},
		{domain.RoleCacheKey(domain.RoleAmbulance), domain.RoleKeyContext(domain.RoleAmbulance), domain.KeyTypeRole},
	}
	for _, s := range seed {
		_, _, err := store.GetOrCreate(s.cacheKey, s.context, s.keyType)
		require.NoError(t, err)
	}

	return NewAdminUseCase(store, testLogger()), store
}

func TestAdminUseCase_Metrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_SnapshotReflectsCache", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		stats, err := useCase.Metrics(ctx, adminCaller())
		require.NoError(t, err)
		assert.Equal(t, 4, stats.TotalKeys)
		assert.Equal(t, 3, stats.KeysByType[domain.KeyTypeUser])
		assert.Equal(t, 1, stats.KeysByType[domain.KeyTypeRole])
		assert.Equal(t, domain.Production, stats.Environment)
	})

	t.Run("Error_NonAdminForbidden", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		caller := &domain.SubjectClaims{ID: 1, Role: domain.RoleAmbulance}
		_, err := useCase.Metrics(ctx, caller)
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})

	t.Run("Error_MissingCallerForbidden", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		_, err := useCase.Metrics(ctx, nil)
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}

func TestAdminUseCase_RevokeUserKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RemovesAllRolesForUser", func(t *testing.T) {
		useCase, store := newAdminFixture(t)

		removed, err := useCase.RevokeUserKeys(ctx, adminCaller(), "1")
		require.NoError(t, err)
		assert.Equal(t, 2, removed)

		stats := store.Stats()
		assert.Equal(t, 2, stats.TotalKeys)
	})

	t.Run("Success_UnknownUserRemovesNothing", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		removed, err := useCase.RevokeUserKeys(ctx, adminCaller(), "999")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("Error_NonNumericUserID", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		_, err := useCase.RevokeUserKeys(ctx, adminCaller(), "bob")
		assert.ErrorIs(t, err, domain.ErrInvalidUserID)
		assert.ErrorIs(t, err, errors.ErrInvalidInput)
	})

	t.Run("Error_NonAdminForbidden", func(t *testing.T) {
		useCase, store := newAdminFixture(t)

		caller := &domain.SubjectClaims{ID: 1, Role: domain.RoleHospital}
		_, err := useCase.RevokeUserKeys(ctx, caller, "1")
		assert.ErrorIs(t, err, errors.ErrForbidden)
		assert.Equal(t, 4, store.Stats().TotalKeys)
	})
}

func TestAdminUseCase_RevokeRoleKeys(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_RemovesRoleKey", func(t *testing.T) {
		useCase, store := newAdminFixture(t)

		removed, err := useCase.RevokeRoleKeys(ctx, adminCaller(), "ambulance")
		require.NoError(t, err)
		assert.Equal(t, 1, removed)
		assert.Equal(t, 3, store.Stats().TotalKeys)
	})

	t.Run("Success_AbsentRoleKeyRemovesNothing", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		removed, err := useCase.RevokeRoleKeys(ctx, adminCaller(), "hospital")
		require.NoError(t, err)
		assert.Equal(t, 0, removed)
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		_, err := useCase.RevokeRoleKeys(ctx, adminCaller(), "superuser")
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("Error_NonAdminForbidden", func(t *testing.T) {
		useCase, _ := newAdminFixture(t)

		caller := &domain.SubjectClaims{ID: 5, Role: domain.RolePatient}
		_, err := useCase.RevokeRoleKeys(ctx, caller, "ambulance")
		assert.ErrorIs(t, err, errors.ErrForbidden)
	})
}
