package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/emergencyconnect/kms/internal/kms/domain"
)

const (
	// kdfIterations is a fixed policy constant. Changing it silently
	// invalidates every previously issued token still in flight, so it is
	// deliberately not configurable.
	kdfIterations = 10000

	// kdfKeyLength is the derived key size in bytes.
	kdfKeyLength = 32
)

// DeriveKey maps (master secret, salt, environment, key type, context) to a
// 32-byte symmetric signing key, deterministically.
//
// Two steps:
//  1. contextSalt = hex(HMAC-SHA256(key = salt, msg = "{env}:{keyType}:{context}"))
//  2. key = PBKDF2-SHA256(password = masterSecret, salt = contextSalt,
//     iterations = 10000, length = 32)
//
// The HMAC step gives each context an independent salt, so distinct
// contexts produce independent keys; PBKDF2 makes recovering the master
// secret from any derived key computationally infeasible.
func DeriveKey(
	masterSecret, salt []byte,
	env domain.Environment,
	keyType domain.KeyType,
	keyContext string,
) []byte {
	mac := hmac.New(sha256.New, salt)
	fmt.Fprintf(mac, "%s:%s:%s", env, keyType, keyContext)
	contextSalt := hex.EncodeToString(mac.Sum(nil))

	return pbkdf2.Key(masterSecret, []byte(contextSalt), kdfIterations, kdfKeyLength, sha256.New)
}
