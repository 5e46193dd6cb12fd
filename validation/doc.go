// Package validation checks configuration sections and request input.
//
// Struct tag validation (go-playground/validator) covers configuration:
//
//	type Config struct {
//	    Timeout time.Duration `mapstructure:"timeout" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// The programmatic Validator covers path and body input:
//
//	err := validation.New().Integer("id", c.Param("id")).Validate()
//
// Both return an *errors.AppError with code INVALID_INPUT and the failing
// fields under the "fields" detail.
package validation
