package dto

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate runs struct tag validation and flattens the first failure into a
// single message suitable for the wire error shape.
func Validate(payload any) error {
	err := validate.Struct(payload)
	if err == nil {
		return nil
	}

	if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return &ValidationMessage{Message: field + " is required"}
		case "email":
			return &ValidationMessage{Message: field + " must be a valid email address"}
		default:
			return &ValidationMessage{Message: field + " is invalid"}
		}
	}
	return &ValidationMessage{Message: "invalid payload"}
}

// ValidationMessage is a flattened validation failure.
type ValidationMessage struct {
	Message string
}

func (v *ValidationMessage) Error() string { return v.Message }
