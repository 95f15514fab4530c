package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxMemberIDLength bounds member identifiers accepted from a provider.
const MaxMemberIDLength = 128

var validate = validator.New()

// ValidateStruct checks s against its `validate` struct tags and reports every
// failing field in one INVALID_INPUT error. The code can be narrowed by
// callers through [ValidateStructCode].
func ValidateStruct(s any) error {
	return ValidateStructCode(ErrCodeInvalidInput, s)
}

// ValidateStructCode is [ValidateStruct] with a caller-chosen error code.
func ValidateStructCode(code Code, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) {
		return Wrap(code, err, "validation failed")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, formatFieldError(fe))
	}
	return New(code, "%s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// ValidateMemberID validates a member identifier before it is used as a map
// key, a DOT node name or an SVG element id.
//
// Validation rules:
//   - ID cannot be empty
//   - Maximum length of MaxMemberIDLength bytes
//   - No control characters or null bytes
func ValidateMemberID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidMember, "member id cannot be empty")
	}
	if len(id) > MaxMemberIDLength {
		return New(ErrCodeInvalidMember, "member id too long (max %d characters)", MaxMemberIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidMember, "member id %q contains control characters", id)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
