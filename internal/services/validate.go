package services

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("simple_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	return v
}

// fieldViolations runs struct validation and maps each failing field to its message, in field order.
// Fields without an entry in messages fall back to "<field> is invalid.".
func fieldViolations(s any, messages map[string]string) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(ve))
	seen := map[string]bool{}
	for _, fe := range ve {
		// dive errors report "Focus[2]"; they share the message of the slice itself
		field, _, _ := strings.Cut(fe.Field(), "[")
		if seen[field] {
			continue
		}
		seen[field] = true
		if msg, ok := messages[field]; ok {
			out = append(out, msg)
			continue
		}
		out = append(out, "`"+field+"` is invalid.")
	}
	return out
}
