// Package validation provides custom validation rules for the application.
package validation

import (
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/emergencyconnect/kms/internal/errors"
	"github.com/emergencyconnect/kms/internal/kms/domain"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace.
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NumericString validates that a string contains only decimal digits.
var NumericString = validation.NewStringRuleWithError(
	func(s string) bool {
		if s == "" {
			return true // Let Required handle empty strings
		}
		for _, r := range s {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	},
	validation.NewError("validation_numeric", "must contain only digits"),
)

// SubjectRole validates that a string is one of the platform roles.
var SubjectRole = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		if r, isRole := value.(domain.Role); isRole {
			s = string(r)
		} else {
			return validation.NewError("validation_role_type", "must be a string")
		}
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if !domain.Role(s).IsValid() {
		return validation.NewError(
			"validation_role",
			"must be one of patient, ambulance, hospital, admin",
		)
	}
	return nil
})
