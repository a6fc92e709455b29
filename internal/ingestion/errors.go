package ingestion

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports an invalid resume submission.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// validationError converts the first validator failure into a ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Tag()
		if fe.Param() != "" {
			msg += "=" + fe.Param()
		}
		return &ValidationError{Field: jsonName(fe.Field()), Message: msg}
	}
	return &ValidationError{Field: "request", Message: err.Error()}
}

// jsonName maps a Request field name to its JSON key.
func jsonName(field string) string {
	switch field {
	case "ResumeText":
		return "resume_text"
	default:
		return strings.ToLower(field)
	}
}
