package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// SubjectClaims identifies the subject a token is issued for. The optional
// ambulance and hospital ids are carried for dispatch subjects that are
// bound to a vehicle or facility.
type SubjectClaims struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Role        Role   `json:"role"`
	AmbulanceID *int64 `json:"ambulanceId,omitempty"`
	HospitalID  *int64 `json:"hospitalId,omitempty"`
}

// TokenClaims is the full payload of an issued bearer token: the subject
// claims plus the issuance metadata a verifier needs to reconstruct the
// signing key (key id and environment) before checking the signature.
type TokenClaims struct {
	SubjectClaims
	KeyID       string `json:"keyId"`
	Environment string `json:"env"`
	jwt.RegisteredClaims
}
