package validation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kbukum/streamkit/errors"
)

// FieldError is one failed check, reported under "fields" in the error details.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validator checks request values that do not live in a struct, such as
// path parameters. Checks chain and every failure is kept.
type Validator struct {
	failures []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) {
	v.failures = append(v.failures, FieldError{Field: field, Message: message})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool { return len(v.failures) > 0 }

// Errors returns the recorded failures in check order.
func (v *Validator) Errors() []FieldError { return v.failures }

// Validate turns the failures into one INVALID_INPUT error, or nil.
func (v *Validator) Validate() error {
	if len(v.failures) == 0 {
		return nil
	}
	var b strings.Builder
	for i, f := range v.failures {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s: %s", f.Field, f.Message)
	}
	return errors.Validation(b.String()).WithDetail("fields", v.failures)
}

// Required fails on blank values.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// Integer fails unless value is a base-10 integer, surrounding space allowed.
func (v *Validator) Integer(field, value string) *Validator {
	_, err := strconv.Atoi(strings.TrimSpace(value))
	return v.Custom(err == nil, field, "must be an integer")
}

// Custom records message for field when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}
