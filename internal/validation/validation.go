package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Get returns the shared validator. Field names in errors come from the
// `form` struct tag.
func Get() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
			if name == "" || name == "-" {
				return f.Name
			}
			return name
		})
	})
	return validate
}

// FieldError is one failed rule, phrased for display in a flash message.
type FieldError struct {
	Field   string
	Message string
}

// Errors is returned by Struct when validation fails.
type Errors []FieldError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, fe := range e {
		msgs[i] = fe.Message
	}
	return strings.Join(msgs, "; ")
}

// Struct validates s and returns Errors, or nil.
func Struct(s any) error {
	err := Get().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := make(Errors, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	label := humanize(fe.Field())
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		if isString {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("%s must be at most %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", label, fe.Param())
	case "alphanum":
		return label + " may contain only letters and numbers"
	case "eqfield":
		return label + " does not match"
	}
	return fmt.Sprintf("%s is invalid", label)
}

// humanize turns "ready_in_minutes" into "Ready in minutes".
func humanize(field string) string {
	s := strings.ReplaceAll(field, "_", " ")
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
