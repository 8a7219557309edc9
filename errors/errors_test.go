package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestAppError_New_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "not found", http.StatusNotFound)
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.HTTPStatus != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, err.HTTPStatus)
	}
	if err.Retryable {
		t.Error("NOT_FOUND should not be retryable")
	}
}

func TestAppError_New_Retryable(t *testing.T) {
	err := New(ErrCodeTimeout, "timed out", http.StatusGatewayTimeout)
	if !err.Retryable {
		t.Error("TIMEOUT should be retryable")
	}
}

func TestAppError_MissingCredential_NamesProvider(t *testing.T) {
	err := MissingCredential("anthropic")
	if err.HTTPStatus != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", err.HTTPStatus)
	}
	if !strings.Contains(err.Message, "anthropic") {
		t.Errorf("expected provider in message, got %q", err.Message)
	}
	if err.Details["provider"] != "anthropic" {
		t.Errorf("expected provider detail, got %v", err.Details["provider"])
	}
}

func TestAppError_Upstream_Status(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		wantStatus int
		retryable  bool
	}{
		{"client error kept", http.StatusPaymentRequired, http.StatusPaymentRequired, false},
		{"rate limit kept", http.StatusTooManyRequests, http.StatusTooManyRequests, true},
		{"server error kept", http.StatusBadGateway, http.StatusBadGateway, true},
		{"unknown status", 0, http.StatusInternalServerError, true},
		{"success status is not an error status", http.StatusOK, http.StatusInternalServerError, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Upstream("openai", tc.status, "boom")
			if err.HTTPStatus != tc.wantStatus {
				t.Errorf("expected %d, got %d", tc.wantStatus, err.HTTPStatus)
			}
			if err.Retryable != tc.retryable {
				t.Errorf("expected retryable=%v, got %v", tc.retryable, err.Retryable)
			}
		})
	}
}

func TestAppError_Upstream_DefaultMessage(t *testing.T) {
	err := Upstream("google", 500, "")
	if err.Message != "google API call failed" {
		t.Errorf("unexpected message %q", err.Message)
	}
}

func TestAppError_NotFound_EmptyID(t *testing.T) {
	err := NotFound("conversation", "")
	if _, ok := err.Details["id"]; ok {
		t.Error("expected no 'id' key in details when id is empty")
	}
}

func TestAppError_Internal_Success(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Internal(cause)
	if err.Code != ErrCodeInternal {
		t.Errorf("expected INTERNAL_ERROR, got %s", err.Code)
	}
	if err.Message != "disk full" {
		t.Errorf("expected cause message, got %q", err.Message)
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected errors.Is to find the cause")
	}
}

func TestAppError_WithDetail_NilMap(t *testing.T) {
	err := &AppError{Code: ErrCodeInternal}
	err.WithDetail("k", "v")
	if err.Details["k"] != "v" {
		t.Errorf("expected k=v, got %v", err.Details["k"])
	}
}

func TestAppError_Error_Format(t *testing.T) {
	err := BadRequest("messages and model are required")
	if got := err.Error(); got != "INVALID_INPUT: messages and model are required" {
		t.Errorf("unexpected format %q", got)
	}
	err.WithCause(fmt.Errorf("root"))
	if !strings.Contains(err.Error(), "cause: root") {
		t.Errorf("expected cause in %q", err.Error())
	}
}

func TestAppError_Constructors_Table(t *testing.T) {
	tests := []struct {
		name   string
		err    *AppError
		code   ErrorCode
		status int
	}{
		{"BadRequest", BadRequest("x"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"MissingField", MissingField("model"), ErrCodeMissingField, http.StatusBadRequest},
		{"Validation", Validation("x"), ErrCodeInvalidInput, http.StatusBadRequest},
		{"Conflict", Conflict("x"), ErrCodeConflict, http.StatusConflict},
		{"Busy", Busy("c1"), ErrCodeConflict, http.StatusConflict},
		{"Timeout", Timeout("dispatch"), ErrCodeTimeout, http.StatusGatewayTimeout},
		{"StorageError", StorageError("redis", nil), ErrCodeStorage, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.err.Code != tc.code {
				t.Errorf("expected code %s, got %s", tc.code, tc.err.Code)
			}
			if tc.err.HTTPStatus != tc.status {
				t.Errorf("expected status %d, got %d", tc.status, tc.err.HTTPStatus)
			}
		})
	}
}

func TestAppError_ToResponse_ErrorIsString(t *testing.T) {
	resp := MissingCredential("openai").ToResponse()
	if resp.Error != "Please provide an API key for openai." {
		t.Errorf("unexpected error string %q", resp.Error)
	}
	if resp.Code != ErrCodeUnauthorized {
		t.Errorf("expected UNAUTHORIZED, got %s", resp.Code)
	}
}

func TestAppError_AsAppError_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("send: %w", Busy("c1"))
	appErr, ok := AsAppError(wrapped)
	if !ok {
		t.Fatal("expected AsAppError to unwrap")
	}
	if appErr.Details["conversation_id"] != "c1" {
		t.Errorf("unexpected details %v", appErr.Details)
	}
	if !HasCode(wrapped, ErrCodeConflict) {
		t.Error("expected HasCode to match CONFLICT")
	}
	if IsAppError(fmt.Errorf("plain")) {
		t.Error("plain error should not be an AppError")
	}
}
