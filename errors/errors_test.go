package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew_RetryableDetection(t *testing.T) {
	if err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout); !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
	if err := New(ErrCodeInvalidInput, "bad", http.StatusBadRequest); err.Retryable {
		t.Error("INVALID_INPUT should not be retryable")
	}
}

func TestAppError_ErrorString(t *testing.T) {
	err := New(ErrCodeInternal, "oops", http.StatusInternalServerError)
	if err.Error() != "INTERNAL_ERROR: oops" {
		t.Errorf("unexpected error string %q", err.Error())
	}

	err.WithCause(stderrors.New("disk"))
	if !strings.Contains(err.Error(), "(cause: disk)") {
		t.Errorf("expected cause in error string, got %q", err.Error())
	}
}

func TestNotAcceptable(t *testing.T) {
	err := NotAcceptable("text/html", []string{"application/json", "text/event-stream"})
	if err.HTTPStatus != http.StatusNotAcceptable {
		t.Errorf("expected 406, got %d", err.HTTPStatus)
	}
	if !IsNotAcceptable(err) {
		t.Error("expected IsNotAcceptable")
	}
	if err.Details["accept"] != "text/html" {
		t.Errorf("expected accept detail, got %v", err.Details["accept"])
	}
	if !strings.Contains(err.Message, "text/event-stream") {
		t.Errorf("expected supported types in message, got %q", err.Message)
	}
}

func TestSequenceFailures(t *testing.T) {
	cause := stderrors.New("Bar")

	tf := TransformFailed(cause)
	if !IsTransformFailure(tf) || IsProducerFailure(tf) {
		t.Error("transform failure misclassified")
	}
	if !stderrors.Is(tf, cause) {
		t.Error("expected cause to unwrap")
	}

	pf := ProducerFailed(cause)
	if !IsProducerFailure(pf) || IsTransformFailure(pf) {
		t.Error("producer failure misclassified")
	}

	if StatusCode(tf) != http.StatusInternalServerError || StatusCode(pf) != http.StatusInternalServerError {
		t.Error("sequence failures should map to 500")
	}
}

func TestHasCode_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", InvalidInput("id", "not a number"))
	if !HasCode(wrapped, ErrCodeInvalidInput) {
		t.Error("expected wrapped AppError to be found")
	}
	if HasCode(stderrors.New("plain"), ErrCodeInvalidInput) {
		t.Error("plain error should not match")
	}
	if StatusCode(wrapped) != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", StatusCode(wrapped))
	}
	if StatusCode(stderrors.New("plain")) != http.StatusInternalServerError {
		t.Error("unknown errors should map to 500")
	}
}

func TestWithDetail(t *testing.T) {
	err := Validation("bad body").WithDetail("field", "items")
	if err.Details["field"] != "items" {
		t.Errorf("expected detail, got %v", err.Details)
	}
}

func TestToResponse_JSON(t *testing.T) {
	err := UnsupportedMediaType("application/xml")
	data, marshalErr := json.Marshal(err.ToResponse())
	if marshalErr != nil {
		t.Fatal(marshalErr)
	}

	var decoded ErrorResponse
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatal(uErr)
	}
	if decoded.Error.Code != ErrCodeUnsupportedMediaType {
		t.Errorf("expected code UNSUPPORTED_MEDIA_TYPE, got %s", decoded.Error.Code)
	}
	if decoded.Error.Details["content_type"] != "application/xml" {
		t.Errorf("expected content_type detail, got %v", decoded.Error.Details)
	}
}

func TestResponseFor(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   ErrorCode
	}{
		{"app error", NotAcceptable("image/png", []string{"text/plain"}), http.StatusNotAcceptable, ErrCodeNotAcceptable},
		{"wrapped app error", fmt.Errorf("bind: %w", Validation("bad body")), http.StatusBadRequest, ErrCodeInvalidInput},
		{"plain error", fmt.Errorf("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := ResponseFor(tt.err)
			if status != tt.wantStatus || resp.Error.Code != tt.wantCode {
				t.Errorf("got %d %s, want %d %s", status, resp.Error.Code, tt.wantStatus, tt.wantCode)
			}
		})
	}
}
