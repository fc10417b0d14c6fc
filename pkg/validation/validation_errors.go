package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError is one field-level validation problem.
type FieldError struct {
	Field string `json:"field"`
	Error string `json:"error"`
}

// FormatValidationErrors converts validator errors to field-level messages.
// The second return is false when err is not a validation error.
func FormatValidationErrors(err error) ([]FieldError, bool) {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil, false
	}

	out := make([]FieldError, 0, len(validationErrors))
	for _, e := range validationErrors {
		out = append(out, FieldError{
			Field: fieldPath(e),
			Error: formatSingleError(e),
		})
	}
	return out, true
}

// fieldPath drops the top-level struct name from the namespace:
// "CreateApplicationRequest.contacts[0].email" becomes "contacts[0].email".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func formatSingleError(e validator.FieldError) string {
	param := e.Param()

	switch e.Tag() {
	case "required":
		return "must not be blank"
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at least %s characters", param)
		}
		return fmt.Sprintf("must be at least %s", param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("must be at most %s characters", param)
		}
		return fmt.Sprintf("must be at most %s", param)
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(param, " ", ", "))
	case "email":
		return "must be a well-formed email address"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return fmt.Sprintf("must match the format %s", param)
	case "valid_name":
		return "may only contain letters, spaces and . ' - /"
	case "valid_phone":
		return "must be a phone number of 7-15 digits, optionally starting with +"
	case "no_emoji":
		return "must not contain emoji or symbols"
	case "application_status":
		return "must be one of: APPLIED, INTERVIEW, OFFER, REJECTED, GHOSTED"
	default:
		return fmt.Sprintf("failed on the '%s' rule", e.Tag())
	}
}
