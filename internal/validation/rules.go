// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

var (
	// permissionNameRegex enforces the "<resource>:<action>" permission naming convention
	permissionNameRegex = regexp.MustCompile(`^[a-z0-9_-]+:[a-z0-9_-]+$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// PermissionName validates the "<resource>:<action>" permission naming convention
// (e.g. "transaction:read").
var PermissionName = validation.NewStringRuleWithError(
	func(s string) bool {
		return permissionNameRegex.MatchString(s)
	},
	validation.NewError("validation_permission_name", "must follow the <resource>:<action> format"),
)

// UUIDString validates that a string parses as a UUID.
var UUIDString = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := uuid.Parse(s)
		return err == nil
	},
	validation.NewError("validation_uuid", "must be a valid UUID"),
)

// RFC3339String validates that a string parses as an RFC 3339 timestamp.
var RFC3339String = validation.NewStringRuleWithError(
	func(s string) bool {
		_, err := time.Parse(time.RFC3339, s)
		return err == nil
	},
	validation.NewError("validation_rfc3339", "must be a valid RFC 3339 timestamp"),
)
