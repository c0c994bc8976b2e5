package validation

import (
	"testing"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/errors"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
)

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      8,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name      string
		password  interface{}
		shouldErr bool
		errMsg    string
	}{
		{name: "valid password", password: "SecurePass123!"},
		{name: "too short", password: "Short1!", shouldErr: true, errMsg: "at least 8 characters"},
		{name: "missing uppercase", password: "securepass123!", shouldErr: true, errMsg: "uppercase letter"},
		{name: "missing lowercase", password: "SECUREPASS123!", shouldErr: true, errMsg: "lowercase letter"},
		{name: "missing number", password: "SecurePass!", shouldErr: true, errMsg: "one number"},
		{name: "missing special", password: "SecurePass123", shouldErr: true, errMsg: "special character"},
		{name: "not a string", password: 123, shouldErr: true, errMsg: "must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.shouldErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestDefaultPasswordStrength(t *testing.T) {
	assert.NoError(t, DefaultPasswordStrength.Validate("Password1"))
	assert.Error(t, DefaultPasswordStrength.Validate("password1"))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, validation.Validate("user@example.com", Email))
	assert.NoError(t, validation.Validate("user.name+tag@example.co.uk", Email))
	assert.NoError(t, validation.Validate("", Email))
	assert.Error(t, validation.Validate("invalid-email", Email))
	assert.Error(t, validation.Validate("user@", Email))
}

func TestNoWhitespaceAndNotBlank(t *testing.T) {
	assert.NoError(t, validation.Validate("value", NoWhitespace))
	assert.Error(t, validation.Validate(" value", NoWhitespace))
	assert.Error(t, validation.Validate("value\t", NoWhitespace))

	assert.NoError(t, validation.Validate("value", NotBlank))
	assert.Error(t, validation.Validate("   ", NotBlank))
}

func TestIdentifier(t *testing.T) {
	rule := Identifier(identifier.Product)

	assert.NoError(t, validation.Validate(uuid.NewString(), rule))
	assert.NoError(t, validation.Validate("", rule))

	err := validation.Validate("product-1", rule)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "valid product id")
}

func TestOneOf(t *testing.T) {
	rule := OneOf("pix", "credit_card")

	assert.NoError(t, validation.Validate("pix", rule))
	err := validation.Validate("cash", rule)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pix, credit_card")
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(validation.Validate("bad", Email))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "must be a valid email address")
}
