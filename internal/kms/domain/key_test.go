package domain

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeyID(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	keyID, err := NewKeyID(Production, now)
	require.NoError(t, err)

	pattern := fmt.Sprintf(`^kms_production_%d_[0-9a-f]{8}$`, now.UnixMilli())
	assert.Regexp(t, regexp.MustCompile(pattern), keyID)

	// Random suffix makes ids unique even within the same millisecond.
	other, err := NewKeyID(Production, now)
	require.NoError(t, err)
	assert.NotEqual(t, keyID, other)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "user_7_patient", UserCacheKey(7, RolePatient))
	assert.Equal(t, "user_7_", UserKeyPrefix(7))
	assert.Equal(t, "role_hospital", RoleCacheKey(RoleHospital))
}

func TestKeyContexts(t *testing.T) {
	assert.Equal(t, "7:patient", UserKeyContext(7, RolePatient))
	assert.Equal(t, "hospital", RoleKeyContext(RoleHospital))
}

func TestZero(t *testing.T) {
	t.Run("zero non-nil slice", func(t *testing.T) {
		b := []byte{1, 2, 3, 4}
		Zero(b)
		assert.Equal(t, []byte{0, 0, 0, 0}, b)
	})

	t.Run("zero nil slice", func(t *testing.T) {
		assert.NotPanics(t, func() { Zero(nil) })
	})
}
