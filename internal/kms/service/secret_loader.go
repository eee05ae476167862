package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/emergencyconnect/kms/internal/config"
	"github.com/emergencyconnect/kms/internal/kms/domain"
)

const (
	// generatedSecretBytes is the size of a development master secret
	// synthesized when none is configured.
	generatedSecretBytes = 32

	// generatedSaltBytes is the size of a synthesized development salt.
	generatedSaltBytes = 16
)

// SecretLoader resolves the master secret and derivation salt from the
// runtime environment at process start. It runs exactly once; the loaded
// values are process-wide and never reloaded.
//
// Production requires both values to be externally supplied and enforces a
// minimum master secret length. Development synthesizes missing values and
// warns loudly: a synthesized secret is lost on restart, which invalidates
// every previously issued token.
type SecretLoader struct {
	policy domain.Policy
	opener KeeperOpener
	logger *slog.Logger
}

// NewSecretLoader creates a secret loader for the given policy. The opener
// is used only when the master secret is supplied as a KMS ciphertext; it
// may be nil otherwise.
func NewSecretLoader(policy domain.Policy, opener KeeperOpener, logger *slog.Logger) *SecretLoader {
	return &SecretLoader{
		policy: policy,
		opener: opener,
		logger: logger,
	}
}

// LoadMasterSecret resolves the master secret.
//
// Resolution order:
//  1. KMS_MASTER_KEY_ENCRYPTED + KMS_KEY_URI: base64 ciphertext decrypted
//     through the configured KMS keeper.
//  2. KMS_MASTER_KEY: used as-is.
//  3. Development only: a random secret is synthesized with a warning.
func (l *SecretLoader) LoadMasterSecret(ctx context.Context, cfg *config.Config) ([]byte, error) {
	secret, err := l.resolveMasterSecret(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if len(secret) == 0 {
		if l.policy.RequireExternalSecrets {
			return nil, domain.ErrMasterSecretRequired
		}
		secret = make([]byte, generatedSecretBytes)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("failed to generate development master secret: %w", err)
		}
		l.logger.Warn(
			"KMS_MASTER_KEY not set, generated an ephemeral master secret: " +
				"all issued tokens become invalid on restart",
		)
	}

	if l.policy.MinMasterSecretLength > 0 && len(secret) < l.policy.MinMasterSecretLength {
		return nil, domain.ErrMasterSecretTooShort
	}

	return secret, nil
}

// LoadDerivationSalt resolves the derivation salt. Production requires it;
// development synthesizes a random salt with a warning. There is no length
// rule for the salt.
func (l *SecretLoader) LoadDerivationSalt(cfg *config.Config) ([]byte, error) {
	if cfg.KMSDerivationSalt != "" {
		return []byte(cfg.KMSDerivationSalt), nil
	}

	if l.policy.RequireExternalSecrets {
		return nil, domain.ErrDerivationSaltRequired
	}

	salt := make([]byte, generatedSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate development salt: %w", err)
	}
	l.logger.Warn(
		"KMS_DERIVATION_SALT not set, generated an ephemeral salt: " +
			"all issued tokens become invalid on restart",
	)

	return salt, nil
}

// resolveMasterSecret returns the configured secret bytes, decrypting the
// KMS ciphertext form when present. Returns nil when nothing is configured.
func (l *SecretLoader) resolveMasterSecret(ctx context.Context, cfg *config.Config) ([]byte, error) {
	if cfg.KMSMasterKeyEncrypted == "" {
		return []byte(cfg.KMSMasterKey), nil
	}

	if cfg.KMSKeyURI == "" || l.opener == nil {
		return nil, fmt.Errorf(
			"%w: KMS_MASTER_KEY_ENCRYPTED is set but KMS_KEY_URI is not",
			domain.ErrMasterSecretRequired,
		)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(cfg.KMSMasterKeyEncrypted)
	if err != nil {
		return nil, fmt.Errorf("invalid KMS_MASTER_KEY_ENCRYPTED base64: %w", err)
	}

	keeper, err := l.opener.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			l.logger.Warn("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	secret, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt master secret with KMS keeper: %w", err)
	}

	l.logger.Info("master secret decrypted via KMS keeper", slog.String("provider", cfg.KMSProvider))

	return secret, nil
}
