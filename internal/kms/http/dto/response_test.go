package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

func TestMapIssueOutputToResponse(t *testing.T) {
	expiresAt := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	output := &domain.IssueTokenOutput{
		Token:     "header.payload.signature",
		KeyID:     "kms_production_1700000000000_deadbeef",
		ExpiresAt: expiresAt,
	}

	response := MapIssueOutputToResponse(output)

	assert.Equal(t, output.Token, response.Token)
	assert.Equal(t, output.KeyID, response.KeyID)
	assert.Equal(t, expiresAt, response.ExpiresAt)
}

func TestMapStatsToResponse(t *testing.T) {
	stats := &service.Stats{
		TotalKeys: 3,
		KeysByType: map[domain.KeyType]int{
			domain.KeyTypeUser: 2,
			domain.KeyTypeRole: 1,
		},
		Environment: domain.Production,
	}

	response := MapStatsToResponse(stats)

	assert.Equal(t, 3, response.TotalKeys)
	assert.Equal(t, map[string]int{"user": 2, "role": 1}, response.KeysByType)
	assert.Equal(t, "production", response.Environment)
}
