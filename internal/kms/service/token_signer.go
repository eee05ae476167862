package service

import (
	"github.com/golang-jwt/jwt/v5"

	"github.com/emergencyconnect/kms/internal/kms/domain"
)

// jwtSigningMethods pins token verification to HS256. Accepting whatever
// algorithm a token header declares would let an attacker downgrade to
// "none" or confuse key types.
var jwtSigningMethods = []string{jwt.SigningMethodHS256.Alg()}

// TokenSigner signs and verifies compact HS256 bearer tokens. It is a
// stateless technical service; key selection and caching live in the token
// use case.
type TokenSigner struct{}

// NewTokenSigner creates a TokenSigner.
func NewTokenSigner() *TokenSigner {
	return &TokenSigner{}
}

// Sign produces a signed compact token for the given claims.
func (s *TokenSigner) Sign(claims *domain.TokenClaims, key []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// PeekClaims decodes a token without verifying its signature, exposing the
// key id and environment a verifier needs to reconstruct the signing key.
// Safe only because the caller re-verifies the signature against the
// reconstructed key before trusting any claim.
func (s *TokenSigner) PeekClaims(tokenString string) (*domain.TokenClaims, error) {
	claims := &domain.TokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods(jwtSigningMethods))
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Verify performs strict verification: HS256 signature against key, issuer,
// environment-scoped audience, and expiry. Every failure collapses into
// domain.ErrInvalidToken so callers cannot distinguish which check failed.
func (s *TokenSigner) Verify(
	tokenString string,
	key []byte,
	env domain.Environment,
) (*domain.TokenClaims, error) {
	claims := &domain.TokenClaims{}
	_, err := jwt.ParseWithClaims(
		tokenString,
		claims,
		func(*jwt.Token) (any, error) { return key, nil },
		jwt.WithValidMethods(jwtSigningMethods),
		jwt.WithIssuer(domain.TokenIssuer),
		jwt.WithAudience(domain.TokenAudience(env)),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}
