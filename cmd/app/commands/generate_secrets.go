package commands

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/emergencyconnect/kms/internal/kms/service"
)

const (
	// masterSecretBytes yields an 88-character base64 master secret,
	// comfortably above the 64-character production minimum.
	masterSecretBytes = 64

	// derivationSaltBytes is the size of the generated derivation salt.
	derivationSaltBytes = 32
)

// RunGenerateSecrets generates a production master secret and derivation salt
// and prints them as environment variable assignments.
//
// When keyURI is set, the master secret is encrypted through the KMS keeper
// and emitted as KMS_MASTER_KEY_ENCRYPTED, so the plaintext never reaches the
// deployment configuration. Otherwise the plaintext KMS_MASTER_KEY form is
// printed for direct use with a secrets manager.
func RunGenerateSecrets(ctx context.Context, opener service.KeeperOpener, writer io.Writer, keyURI string) error {
	secret := make([]byte, masterSecretBytes)
	if _, err := rand.Read(secret); err != nil {
		return fmt.Errorf("failed to generate master secret: %w", err)
	}

	salt := make([]byte, derivationSaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate derivation salt: %w", err)
	}

	encodedSecret := base64.StdEncoding.EncodeToString(secret)
	encodedSalt := base64.StdEncoding.EncodeToString(salt)

	fmt.Fprintln(writer, "# KMS Secret Configuration")
	fmt.Fprintln(writer, "# Copy these environment variables to your secrets manager")
	fmt.Fprintln(writer)

	if keyURI == "" {
		fmt.Fprintf(writer, "KMS_MASTER_KEY=\"%s\"\n", encodedSecret)
		fmt.Fprintf(writer, "KMS_DERIVATION_SALT=\"%s\"\n", encodedSalt)
		zero(secret)
		return nil
	}

	keeperInterface, err := opener.OpenKeeper(ctx, keyURI)
	if err != nil {
		return fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	defer func() {
		if closeErr := keeperInterface.Close(); closeErr != nil {
			fmt.Fprintf(writer, "# Warning: failed to close KMS keeper: %v\n", closeErr)
		}
	}()

	keeper, ok := keeperInterface.(interface {
		Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("KMS keeper does not support encryption")
	}

	ciphertext, err := keeper.Encrypt(ctx, []byte(encodedSecret))
	if err != nil {
		return fmt.Errorf("failed to encrypt master secret with KMS keeper: %w", err)
	}

	fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", keyURI)
	fmt.Fprintf(writer, "KMS_MASTER_KEY_ENCRYPTED=\"%s\"\n", base64.StdEncoding.EncodeToString(ciphertext))
	fmt.Fprintf(writer, "KMS_DERIVATION_SALT=\"%s\"\n", encodedSalt)

	zero(secret)

	return nil
}

// zero wipes generated key material from memory.
func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
