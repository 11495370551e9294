package handler

import (
	"errors"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/dto"
	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStruct_PasswordRule(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{password: "Sup3rSecure", valid: true},
		{password: "Password1", valid: true},
		{password: "password", valid: false},  // no uppercase, no digit
		{password: "12345678", valid: false},  // digits only
		{password: "PASSWORD1", valid: false}, // no lowercase
		{password: "Pass1", valid: false},     // too short
		{password: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := validateStruct(dto.RegisterInput{
				FirstName: "Jane",
				LastName:  "Doe",
				Email:     "jane@example.com",
				Password:  tt.password,
			})

			if tt.valid {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, autherror.ErrValidationFailed)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Contains(t, vErr.Fields, "password")
		})
	}
}

func TestValidateStruct_PhoneIsOptionalButChecked(t *testing.T) {
	base := dto.RegisterInput{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@example.com",
		Password:  "Sup3rSecure",
	}

	assert.NoError(t, validateStruct(base))

	base.Phone = "+6281234567890"
	assert.NoError(t, validateStruct(base))

	base.Phone = "not-a-phone"
	err := validateStruct(base)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Contains(t, vErr.Fields, "phone")
}

func TestValidateStruct_FieldNamesAreLowerCamel(t *testing.T) {
	err := validateStruct(dto.RegisterInput{})
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))

	for _, field := range []string{"firstName", "lastName", "email", "password"} {
		assert.Contains(t, vErr.Fields, field)
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "420", formatSeconds(7*time.Minute))
	assert.Equal(t, "1", formatSeconds(0))
	assert.Equal(t, "1", formatSeconds(200*time.Millisecond))
	assert.Equal(t, "2", formatSeconds(1900*time.Millisecond))
}
