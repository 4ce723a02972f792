package validate

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/temple-booking/internal/domain"
)

// v is the package-level singleton validator. It is initialised once at
// package load time.
var v = validator.New()

// Struct validates s using its validate tags. The returned error wraps
// domain.ErrValidation and lists every failing field.
func Struct(s interface{}) error {
	if err := v.Struct(s); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, fmt.Sprintf("field '%s' failed '%s'", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("%w: %s", domain.ErrValidation, strings.Join(msgs, "; "))
	}
	return nil
}

// Email reports whether s is a well-formed email address.
func Email(s string) bool {
	return v.Var(s, "required,email") == nil
}
