package validation

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kbukum/chatgate/errors"
)

func TestValidatorRequired(t *testing.T) {
	if New().Required("title", "Trip").HasErrors() {
		t.Error("expected no errors for valid input")
	}
	if !New().Required("title", "").HasErrors() {
		t.Error("expected error for empty field")
	}
	if !New().Required("title", "   ").HasErrors() {
		t.Error("expected error for whitespace-only field")
	}
}

func TestValidatorUUID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"valid", uuid.New().String(), false},
		{"empty", "", true},
		{"malformed", "conv-1", true},
		{"nil uuid", uuid.Nil.String(), true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := New().UUID("id", tc.value).HasErrors(); got != tc.wantErr {
				t.Errorf("UUID(%q) error = %v, want %v", tc.value, got, tc.wantErr)
			}
		})
	}
}

func TestValidatorMaxLengthCountsRunes(t *testing.T) {
	if New().MaxLength("title", "新对话", 3).HasErrors() {
		t.Error("three runes should fit a limit of 3")
	}
	if !New().MaxLength("title", "新对话!", 3).HasErrors() {
		t.Error("expected error over limit")
	}
}

func TestValidatorFloatRange(t *testing.T) {
	if New().FloatRange("temperature", 0.7, 0, 1).HasErrors() {
		t.Error("0.7 should be in range")
	}
	v := New().FloatRange("temperature", 1.5, 0, 1)
	if !v.HasErrors() {
		t.Fatal("expected error for 1.5")
	}
	if msg := v.Errors()[0].Message; msg != "must be between 0 and 1" {
		t.Errorf("unexpected message %q", msg)
	}
}

func TestValidatorOneOf(t *testing.T) {
	allowed := []string{"light", "dark", "system"}
	if New().OneOf("theme", "dark", allowed).HasErrors() {
		t.Error("dark should be allowed")
	}
	if New().OneOf("theme", "", allowed).HasErrors() {
		t.Error("empty value should be skipped")
	}
	if !New().OneOf("theme", "sepia", allowed).HasErrors() {
		t.Error("expected error for sepia")
	}
}

func TestValidatorValidate(t *testing.T) {
	if New().Validate() != nil {
		t.Error("expected nil for no errors")
	}

	appErr := New().
		Required("title", "").
		Custom(false, "model", "is unknown").
		Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
	if !strings.Contains(appErr.Message, "title: is required") || !strings.Contains(appErr.Message, "model: is unknown") {
		t.Errorf("unexpected message %q", appErr.Message)
	}
	fields, ok := appErr.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", appErr.Details["fields"])
	}
}

func TestRequiredFunc(t *testing.T) {
	if err := Required("model", "gpt-4o"); err != nil {
		t.Errorf("unexpected error %v", err)
	}
	if err := Required("model", ""); err == nil {
		t.Error("expected error")
	}
}

type testMessage struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

type testRequest struct {
	Messages    []testMessage `json:"messages" validate:"required,min=1,dive"`
	Model       string        `json:"model" validate:"required"`
	Temperature float64       `json:"temperature" validate:"gte=0,lte=2"`
}

func TestStructValidateValid(t *testing.T) {
	req := testRequest{
		Messages: []testMessage{{Role: "user", Content: "hi"}},
		Model:    "gpt-4o",
	}
	if err := Validate(req); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}

func TestStructValidateMissingFields(t *testing.T) {
	err := Validate(testRequest{})
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.HTTPStatus != 400 {
		t.Errorf("expected 400, got %d", appErr.HTTPStatus)
	}
	for _, want := range []string{"messages: is required", "model: is required"} {
		if !strings.Contains(appErr.Message, want) {
			t.Errorf("expected %q in %q", want, appErr.Message)
		}
	}
}

func TestStructValidateNested(t *testing.T) {
	req := testRequest{
		Messages:    []testMessage{{Role: "robot"}},
		Model:       "gpt-4o",
		Temperature: 3,
	}
	err := Validate(req)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "messages[0].role: must be one of: system user assistant") {
		t.Errorf("expected nested role error in %q", msg)
	}
	if !strings.Contains(msg, "temperature: must be <= 2") {
		t.Errorf("expected temperature error in %q", msg)
	}
}
