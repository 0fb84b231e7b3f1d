package validation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/salomax/neotool-authz/internal/errors"
)

func TestWrapValidationError(t *testing.T) {
	t.Run("NilError", func(t *testing.T) {
		assert.Nil(t, WrapValidationError(nil))
	})

	t.Run("WrapsAsInvalidInput", func(t *testing.T) {
		err := WrapValidationError(errors.New("name: must not be blank"))
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		assert.Contains(t, err.Error(), "must not be blank")
	})
}

func TestNotBlank(t *testing.T) {
	assert.NoError(t, NotBlank.Validate("admin"))
	assert.Error(t, NotBlank.Validate(""))
	assert.Error(t, NotBlank.Validate("   "))
}

func TestNoWhitespace(t *testing.T) {
	assert.NoError(t, NoWhitespace.Validate("admin"))
	assert.Error(t, NoWhitespace.Validate(" admin"))
	assert.Error(t, NoWhitespace.Validate("admin "))
}

func TestPermissionName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", "transaction:read", false},
		{"valid with dash", "audit-log:list", false},
		{"valid with underscore", "group_membership:create", false},
		{"missing action", "transaction", true},
		{"missing resource", ":read", true},
		{"uppercase", "Transaction:Read", true},
		{"extra separator", "a:b:c", true},
		{"blank", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PermissionName.Validate(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
