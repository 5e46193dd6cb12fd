package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/kbukum/streamkit/errors"
)

func TestValidator(t *testing.T) {
	tests := []struct {
		name    string
		build   func(v *Validator)
		wantErr bool
	}{
		{"required ok", func(v *Validator) { v.Required("name", "foo") }, false},
		{"required blank", func(v *Validator) { v.Required("name", "   ") }, true},
		{"integer ok", func(v *Validator) { v.Integer("id", "123") }, false},
		{"integer negative", func(v *Validator) { v.Integer("id", "-7") }, false},
		{"integer bad", func(v *Validator) { v.Integer("id", "abc") }, true},
		{"custom", func(v *Validator) { v.Custom(false, "body", "must not be empty") }, true},
		{"custom ok", func(v *Validator) { v.Custom(true, "body", "must not be empty") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			tt.build(v)
			if v.HasErrors() != tt.wantErr {
				t.Errorf("HasErrors = %v, want %v (%v)", v.HasErrors(), tt.wantErr, v.Errors())
			}
		})
	}
}

func TestValidator_Validate(t *testing.T) {
	if err := New().Required("name", "ok").Validate(); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := New().Required("name", "").Integer("id", "x").Validate()
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != errors.ErrCodeInvalidInput || appErr.HTTPStatus != 400 {
		t.Errorf("code = %s status = %d", appErr.Code, appErr.HTTPStatus)
	}
	if !strings.Contains(appErr.Message, "name: is required") || !strings.Contains(appErr.Message, "id: must be an integer") {
		t.Errorf("message = %q", appErr.Message)
	}
	fields, isFields := appErr.Details["fields"].([]FieldError)
	if !isFields || len(fields) != 2 {
		t.Errorf("fields detail = %v", appErr.Details["fields"])
	}
}

type streamSection struct {
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
	BufferSize int           `mapstructure:"buffer_size" validate:"gte=0,lte=1024"`
}

type appSection struct {
	Name   string        `mapstructure:"name" validate:"required"`
	Stream streamSection `mapstructure:"stream"`
}

func TestValidate_Struct(t *testing.T) {
	valid := appSection{Name: "streamkit", Stream: streamSection{Timeout: 100 * time.Millisecond, BufferSize: 16}}
	if err := Validate(valid); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}

	err := Validate(appSection{Stream: streamSection{Timeout: -1, BufferSize: 4096}})
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	for _, want := range []string{
		"name: is required",
		"stream.timeout: must be greater than or equal to 0",
		"stream.buffer_size: must be less than or equal to 1024",
	} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("message %q missing %q", appErr.Message, want)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	if got := toSnakeCase("BufferSize"); got != "buffer_size" {
		t.Errorf("toSnakeCase = %q", got)
	}
}
