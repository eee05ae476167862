// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	"github.com/emergencyconnect/kms/internal/kms/service"
)

// IssueTokenResponse contains the result of issuing a token.
// SECURITY: the signing key itself never appears in any response.
type IssueTokenResponse struct {
	Token     string    `json:"token"`
	KeyID     string    `json:"keyId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MapIssueOutputToResponse converts a use case output to an API response.
func MapIssueOutputToResponse(output *domain.IssueTokenOutput) IssueTokenResponse {
	return IssueTokenResponse{
		Token:     output.Token,
		KeyID:     output.KeyID,
		ExpiresAt: output.ExpiresAt,
	}
}

// MetricsResponse represents a key cache snapshot in API responses.
type MetricsResponse struct {
	TotalKeys   int            `json:"totalKeys"`
	KeysByType  map[string]int `json:"keysByType"`
	Environment string         `json:"environment"`
}

// MapStatsToResponse converts a cache snapshot to an API response.
func MapStatsToResponse(stats *service.Stats) MetricsResponse {
	keysByType := make(map[string]int, len(stats.KeysByType))
	for keyType, count := range stats.KeysByType {
		keysByType[string(keyType)] = count
	}
	return MetricsResponse{
		TotalKeys:   stats.TotalKeys,
		KeysByType:  keysByType,
		Environment: string(stats.Environment),
	}
}

// RevokeResponse contains the result of a revoke operation. The count
// reflects evicted cache entries, not invalidated tokens.
type RevokeResponse struct {
	RevokedKeys int `json:"revokedKeys"`
}
