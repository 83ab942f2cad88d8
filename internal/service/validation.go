package service

import (
	"errors"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"

	apperrors "marketplace-api/pkg/errors"
)

// NotBlank rejects strings made only of whitespace. Pair it with validation.Required.
var NotBlank = validation.NewStringRule(func(s string) bool {
	return strings.TrimSpace(s) != ""
}, "cannot be blank")

// ValidationFailed converts ozzo validation errors into a ValidationError
// carrying one message per field. Other errors pass through unchanged.
func ValidationFailed(err error) error {
	if err == nil {
		return nil
	}
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	details := make(map[string]interface{}, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		if fieldErr != nil {
			details[field] = fieldErr.Error()
		}
	}
	return apperrors.NewValidationError("Invalid input", details)
}

// StoreFailed keeps classified store errors (Unavailable, Conflict, NotFound)
// and hides everything else behind an internal error.
func StoreFailed(message string, err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.NewInternalError(message, err)
}
