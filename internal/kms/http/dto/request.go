// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	"github.com/emergencyconnect/kms/internal/kms/domain"
	customValidation "github.com/emergencyconnect/kms/internal/validation"
)

// IssueTokenRequest contains the subject claims a token is requested for.
// Field names follow the platform's claim naming so callers can pass the
// subject straight through.
type IssueTokenRequest struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	AmbulanceID *int64 `json:"ambulanceId,omitempty"`
	HospitalID  *int64 `json:"hospitalId,omitempty"`

	// ExpiresInSeconds overrides the configured token lifetime when positive.
	ExpiresInSeconds int64 `json:"expiresInSeconds,omitempty"`
}

// Validate checks if the issue token request is valid.
func (r *IssueTokenRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ID,
			validation.Required,
			validation.Min(int64(1)),
		),
		validation.Field(&r.Username,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 255),
		),
		validation.Field(&r.Role,
			validation.Required,
			customValidation.SubjectRole,
		),
		validation.Field(&r.ExpiresInSeconds,
			validation.Min(int64(0)),
		),
	)
}

// ToInput converts the request to a use case input.
func (r *IssueTokenRequest) ToInput() *domain.IssueTokenInput {
	return &domain.IssueTokenInput{
		Subject: domain.SubjectClaims{
			ID:          r.ID,
			Username:    r.Username,
			Role:        domain.Role(r.Role),
			AmbulanceID: r.AmbulanceID,
			HospitalID:  r.HospitalID,
		},
		ExpiresIn: time.Duration(r.ExpiresInSeconds) * time.Second,
	}
}
