package domain

import "time"

// IssueTokenInput carries the subject a token is issued for. The identity
// itself is vouched for by the caller; this service only signs it.
type IssueTokenInput struct {
	Subject SubjectClaims

	// ExpiresIn overrides the configured token lifetime when positive.
	ExpiresIn time.Duration
}

// IssueTokenOutput is the result of a successful issuance. The signing key
// never leaves the service; only the signed token and its metadata do.
type IssueTokenOutput struct {
	Token     string
	KeyID     string
	ExpiresAt time.Time
}
