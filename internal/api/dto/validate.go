package dto

import (
	"github.com/go-playground/validator/v10"

	apperrors "github.com/spec-kit/backoffice-suite/pkg/util"
)

var validate = validator.New()

// Validate checks struct tags on a request payload and reports every failing
// field at once.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	details := map[string]any{}
	for _, fe := range fieldErrs {
		details[fe.Field()] = fe.Tag()
	}
	return apperrors.NewValidationError("validation failed", details)
}
