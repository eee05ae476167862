// Package usecase implements business logic orchestration for key
// management operations.
package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/emergencyconnect/kms/internal/config"
	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// tokenUseCase implements TokenUseCase using the policy-selected keying
// strategy, the key store, and an HS256 signer.
type tokenUseCase struct {
	config   *config.Config
	policy   domain.Policy
	keyStore service.KeyStore
	signer   TokenSigner
}

// Issue signs a bearer token for the given subject.
//
// This method:
// 1. Validates the subject role against the fixed role set
// 2. Resolves the keying strategy from the active policy
// 3. Gets or derives the signing key through the key store
// 4. Assembles the claims and signs them with HS256
//
// Security Notes:
//   - The derived key never leaves this method; it is not logged, not
//     returned, and not embedded in errors
//   - The key id in the token identifies a cache entry for tracing, not the
//     key bytes; verification re-derives the key from the subject claims
func (t *tokenUseCase) Issue(
	ctx context.Context,
	input *domain.IssueTokenInput,
) (*domain.IssueTokenOutput, error) {
	subject := input.Subject
	if !subject.Role.IsValid() {
		return nil, domain.ErrInvalidRole
	}

	// Resolve the keying strategy for this subject under the active policy
	cacheKey, keyContext, keyType := t.policy.SubjectKeying(subject.ID, subject.Role)

	key, keyID, err := t.keyStore.GetOrCreate(cacheKey, keyContext, keyType)
	if err != nil {
		return nil, err
	}

	expiresIn := t.config.TokenExpiration
	if input.ExpiresIn > 0 {
		expiresIn = input.ExpiresIn
	}

	now := time.Now().UTC()
	expiresAt := now.Add(expiresIn)

	claims := &domain.TokenClaims{
		SubjectClaims: subject,
		KeyID:         keyID,
		Environment:   string(t.policy.Environment),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    domain.TokenIssuer,
			Audience:  jwt.ClaimStrings{domain.TokenAudience(t.policy.Environment)},
			Subject:   strconv.FormatInt(subject.ID, 10),
			ID:        uuid.Must(uuid.NewV7()).String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := t.signer.Sign(claims, key)
	if err != nil {
		return nil, err
	}

	return &domain.IssueTokenOutput{
		Token:     token,
		KeyID:     keyID,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify validates a bearer token issued by this service.
//
// This method:
// 1. Decodes the token without verification to read the key selection
//    claims (key id, environment, subject id, role)
// 2. Rejects tokens issued for a different environment
// 3. Reconstructs the signing key through the key store using the same
//    keying strategy issuance used
// 4. Performs strict verification against the reconstructed key
//
// Security Notes:
//   - Unverified claims are used only to select a key; nothing is trusted
//     until the signature check passes
//   - A cache eviction between issuance and verification is transparent:
//     the store re-derives bit-identical key bytes for the same subject
//   - All verification failures beyond environment mismatch and structural
//     problems collapse into ErrInvalidToken to avoid a verification oracle
func (t *tokenUseCase) Verify(ctx context.Context, tokenString string) (*domain.TokenClaims, error) {
	peeked, err := t.signer.PeekClaims(tokenString)
	if err != nil {
		return nil, domain.ErrMalformedToken
	}
	if peeked.KeyID == "" {
		return nil, domain.ErrMalformedToken
	}

	if peeked.Environment != string(t.policy.Environment) {
		return nil, domain.ErrEnvironmentMismatch
	}

	if !peeked.Role.IsValid() {
		return nil, domain.ErrInvalidToken
	}

	// Reconstruct the key the way issuance selected it
	cacheKey, keyContext, keyType := t.policy.SubjectKeying(peeked.SubjectClaims.ID, peeked.Role)

	key, _, err := t.keyStore.GetOrCreate(cacheKey, keyContext, keyType)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	claims, err := t.signer.Verify(tokenString, key, t.policy.Environment)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}

	return claims, nil
}

// NewTokenUseCase creates a new TokenUseCase with the provided dependencies.
func NewTokenUseCase(
	config *config.Config,
	policy domain.Policy,
	keyStore service.KeyStore,
	signer TokenSigner,
) TokenUseCase {
	return &tokenUseCase{
		config:   config,
		policy:   policy,
		keyStore: keyStore,
		signer:   signer,
	}
}
