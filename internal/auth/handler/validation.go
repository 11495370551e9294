package handler

import (
	"errors"
	"strings"
	"unicode"

	autherror "github.com/AnthoniusHendriyanto/ecommerce-auth/internal/errors"
	authconstant "github.com/AnthoniusHendriyanto/ecommerce-auth/pkg/constant"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Complexity rule: minimum length plus at least one lowercase, one
	// uppercase and one digit.
	_ = v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		password := fl.Field().String()
		if len(password) < authconstant.PasswordMinLength {
			return false
		}
		var hasLower, hasUpper, hasDigit bool
		for _, r := range password {
			switch {
			case unicode.IsLower(r):
				hasLower = true
			case unicode.IsUpper(r):
				hasUpper = true
			case unicode.IsDigit(r):
				hasDigit = true
			}
		}
		return hasLower && hasUpper && hasDigit
	})

	return v
}

// ValidationError carries the per-field breakdown to the error formatter.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return autherror.ErrValidationFailed.Error()
}

func (e *ValidationError) Unwrap() error {
	return autherror.ErrValidationFailed
}

func validateStruct(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var invalid *validator.InvalidValidationError
	if errors.As(err, &invalid) {
		return err
	}

	fields := make(map[string]string)
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		for _, fe := range vErrs {
			fields[fieldName(fe)] = fieldMessage(fe)
		}
	}

	return &ValidationError{Fields: fields}
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(name[:1]) + name[1:]
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "e164":
		return "must be a valid international phone number"
	case "password":
		return "must be at least 8 characters with lowercase, uppercase and a digit"
	case "max":
		return "is too long"
	default:
		return "is invalid"
	}
}
