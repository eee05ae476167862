package usecase

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emergencyconnect/kms/internal/config"
	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// newTokenFixture builds a token use case backed by a real key store with a
// virtual clock. Advancing the returned time pointer moves the store clock.
func newTokenFixture(env domain.Environment) (TokenUseCase, *service.MemoryKeyStore, *time.Time) {
	policy := domain.PolicyFor(env, 24*time.Hour)
	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	store := service.NewMemoryKeyStoreWithClock(
		policy,
		bytes.Repeat([]byte("a"), 64),
		[]byte("s"),
		func() time.Time { return current },
	)

	cfg := &config.Config{TokenExpiration: 24 * time.Hour}
	useCase := NewTokenUseCase(cfg, policy, store, service.NewTokenSigner())

	return useCase, store, &current
}

func ambulanceSubject() domain.SubjectClaims {
	ambulanceID := int64(7)
	return domain.SubjectClaims{
		ID:          1,
		Username:    "unit-7",
		Role:        domain.RoleAmbulance,
		AmbulanceID: &ambulanceID,
	}
}

func TestTokenUseCase_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_IssueAndVerifyRoundtrip", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		output, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)
		assert.NotEmpty(t, output.Token)
		assert.Regexp(t, `^kms_production_\d+_[0-9a-f]{8}$`, output.KeyID)

		claims, err := useCase.Verify(ctx, output.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.SubjectClaims.ID)
		assert.Equal(t, "unit-7", claims.Username)
		assert.Equal(t, domain.RoleAmbulance, claims.Role)
		require.NotNil(t, claims.AmbulanceID)
		assert.Equal(t, int64(7), *claims.AmbulanceID)
		assert.Equal(t, output.KeyID, claims.KeyID)
		assert.Equal(t, "production", claims.Environment)
		assert.Equal(t, domain.TokenIssuer, claims.Issuer)
		assert.NotEmpty(t, claims.RegisteredClaims.ID)
	})

	t.Run("Success_DefaultExpiration", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		output, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC().Add(24*time.Hour), output.ExpiresAt, time.Minute)
	})

	t.Run("Success_CustomExpiration", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		output, err := useCase.Issue(ctx, &domain.IssueTokenInput{
			Subject:   ambulanceSubject(),
			ExpiresIn: time.Hour,
		})
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), output.ExpiresAt, time.Minute)
	})

	t.Run("Success_SameSubjectReusesCachedKey", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		first, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)
		second, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)

		assert.Equal(t, first.KeyID, second.KeyID)
	})

	t.Run("Success_DevelopmentKeysPerRole", func(t *testing.T) {
		useCase, store, _ := newTokenFixture(domain.Development)

		a := ambulanceSubject()
		b := ambulanceSubject()
		b.ID = 2
		b.Username = "unit-8"

		_, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: a})
		require.NoError(t, err)
		_, err = useCase.Issue(ctx, &domain.IssueTokenInput{Subject: b})
		require.NoError(t, err)

		stats := store.Stats()
		assert.Equal(t, 1, stats.TotalKeys)
		assert.Equal(t, 1, stats.KeysByType[domain.KeyTypeRole])
	})

	t.Run("Error_UnknownRole", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		subject := ambulanceSubject()
		subject.Role = "superuser"

		_, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: subject})
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})
}

func TestTokenUseCase_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("Error_EnvironmentMismatch", func(t *testing.T) {
		devUseCase, _, _ := newTokenFixture(domain.Development)
		prodUseCase, _, _ := newTokenFixture(domain.Production)

		output, err := devUseCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)

		_, err = prodUseCase.Verify(ctx, output.Token)
		assert.ErrorIs(t, err, domain.ErrEnvironmentMismatch)
	})

	t.Run("Error_MissingKeyID", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		signer := service.NewTokenSigner()
		claims := &domain.TokenClaims{
			SubjectClaims: ambulanceSubject(),
			Environment:   "production",
		}
		token, err := signer.Sign(claims, []byte("irrelevant"))
		require.NoError(t, err)

		_, err = useCase.Verify(ctx, token)
		assert.ErrorIs(t, err, domain.ErrMalformedToken)
	})

	t.Run("Error_Undecodable", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		_, err := useCase.Verify(ctx, "not-a-token")
		assert.ErrorIs(t, err, domain.ErrMalformedToken)
	})

	t.Run("Error_WrongSigningKey", func(t *testing.T) {
		useCase, _, _ := newTokenFixture(domain.Production)

		// Same claims, but signed by a store seeded with a different secret
		foreignStore := service.NewMemoryKeyStore(
			domain.PolicyFor(domain.Production, 24*time.Hour),
			bytes.Repeat([]byte("b"), 64),
			[]byte("s"),
		)
		foreignUseCase := NewTokenUseCase(
			&config.Config{TokenExpiration: 24 * time.Hour},
			domain.PolicyFor(domain.Production, 24*time.Hour),
			foreignStore,
			service.NewTokenSigner(),
		)

		output, err := foreignUseCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)

		_, err = useCase.Verify(ctx, output.Token)
		assert.ErrorIs(t, err, domain.ErrInvalidToken)
	})

	t.Run("Success_VerifyAfterRotationSweep", func(t *testing.T) {
		useCase, store, clock := newTokenFixture(domain.Production)

		output, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)

		// Past the rotation window the cached key is swept, but the same
		// bytes are re-derived on verification
		*clock = clock.Add(25 * time.Hour)
		assert.Equal(t, 1, store.SweepStale())

		claims, err := useCase.Verify(ctx, output.Token)
		require.NoError(t, err)
		assert.Equal(t, int64(1), claims.SubjectClaims.ID)
	})

	t.Run("Success_VerifyAfterRevocation", func(t *testing.T) {
		useCase, store, _ := newTokenFixture(domain.Production)

		output, err := useCase.Issue(ctx, &domain.IssueTokenInput{Subject: ambulanceSubject()})
		require.NoError(t, err)

		assert.Equal(t, 1, store.RemoveByPrefix(domain.UserKeyPrefix(1)))

		claims, err := useCase.Verify(ctx, output.Token)
		require.NoError(t, err)
		assert.Equal(t, output.KeyID, claims.KeyID, "unverified key id claim is preserved")
	})
}
