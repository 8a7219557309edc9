package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorCode classifies a failed request.
type ErrorCode int

const (
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection covers refused connections, DNS failures and
	// bodies cut off mid-read.
	ErrCodeConnection
	// ErrCodeAuth is a 401 or 403.
	ErrCodeAuth
	ErrCodeNotFound
	ErrCodeRateLimit
	// ErrCodeValidation is any other 4xx, or a request that could not be
	// built.
	ErrCodeValidation
	ErrCodeServer
)

var codeNames = map[ErrorCode]string{
	ErrCodeTimeout:    "timeout",
	ErrCodeConnection: "connection",
	ErrCodeAuth:       "auth",
	ErrCodeNotFound:   "not_found",
	ErrCodeRateLimit:  "rate_limit",
	ErrCodeValidation: "validation",
	ErrCodeServer:     "server",
}

func (c ErrorCode) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return "unknown"
}

// Error is a failed request. Status errors keep the response body so
// callers can surface the provider's own message.
type Error struct {
	// StatusCode is 0 when no response arrived.
	StatusCode int
	Code       ErrorCode
	Message    string
	Retryable  bool
	Body       []byte
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("httpclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newTransportError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Retryable: true, Err: err}
}

// NewTimeoutError wraps a deadline or client timeout.
func NewTimeoutError(err error) *Error { return newTransportError(ErrCodeTimeout, err) }

// NewConnectionError wraps a transport failure.
func NewConnectionError(err error) *Error { return newTransportError(ErrCodeConnection, err) }

// NewValidationError reports a request that never left the client.
func NewValidationError(msg string) *Error {
	return &Error{Code: ErrCodeValidation, Message: msg}
}

// ClassifyStatusCode turns a non-2xx response into an Error. It returns
// nil for 2xx. Only 429 and 5xx are retryable.
func ClassifyStatusCode(status int, body []byte) *Error {
	if status >= 200 && status < 300 {
		return nil
	}
	e := &Error{StatusCode: status, Message: fmt.Sprintf("HTTP %d", status), Body: body}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		e.Code = ErrCodeAuth
	case status == http.StatusNotFound:
		e.Code = ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		e.Code, e.Retryable = ErrCodeRateLimit, true
	case status >= 400 && status < 500:
		e.Code = ErrCodeValidation
	default:
		e.Code = ErrCodeServer
		e.Retryable = status >= 500
	}
	return e
}

// IsTimeout reports whether err is a timeout Error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsRetryable reports whether err is a retryable Error.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// UpstreamMessage digs the provider's message out of the response body.
// Anthropic and Google nest it under error.message; proxies tend to send
// {"error":"..."} or {"message":"..."}. Short plain-text bodies are used
// as they are. Otherwise it returns Message.
func (e *Error) UpstreamMessage() string {
	if len(e.Body) == 0 {
		return e.Message
	}
	var body struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if json.Unmarshal(e.Body, &body) == nil {
		var nested struct {
			Message string `json:"message"`
		}
		var flat string
		switch {
		case json.Unmarshal(body.Error, &nested) == nil && nested.Message != "":
			return nested.Message
		case json.Unmarshal(body.Error, &flat) == nil && flat != "":
			return flat
		case body.Message != "":
			return body.Message
		}
	}
	if s := strings.TrimSpace(string(e.Body)); s != "" && len(s) <= 512 {
		return s
	}
	return e.Message
}
