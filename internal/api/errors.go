package api

import (
	"errors"
	"fmt"
)

// Kind discriminates the three ways a backend call can fail.
type Kind int

const (
	// KindNetwork means the transport could not complete at all.
	KindNetwork Kind = iota
	// KindHTTP means the backend answered with a non-2xx status.
	KindHTTP
	// KindParse means the response body was not valid JSON.
	KindParse
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindHTTP:
		return "http"
	case KindParse:
		return "parse"
	default:
		return "unknown"
	}
}

// ErrorBody is the backend's error payload. The plain shape carries only
// Error; the validation shape additionally carries per-field Messages with
// server-authoritative ordering.
type ErrorBody struct {
	Error    string              `json:"error"`
	Messages map[string][]string `json:"messages,omitempty"`
}

// HasFieldErrors reports whether the body is the validation shape.
func (b *ErrorBody) HasFieldErrors() bool {
	return b != nil && len(b.Messages) > 0
}

// Error is the only failure type the gateway produces. Nothing outside this
// package constructs one.
type Error struct {
	Kind   Kind
	Status int        // set when Kind == KindHTTP
	Body   *ErrorBody // set when Kind == KindHTTP and the body parsed
	cause  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindHTTP:
		if e.Body != nil && e.Body.Error != "" {
			return fmt.Sprintf("api request failed: %d: %s", e.Status, e.Body.Error)
		}
		return fmt.Sprintf("api request failed: %d", e.Status)
	case KindParse:
		return fmt.Sprintf("api response was not valid JSON: %v", e.cause)
	default:
		return fmt.Sprintf("api request could not complete: %v", e.cause)
	}
}

func (e *Error) Unwrap() error {
	return e.cause
}

// AsError unwraps err into the gateway's failure type.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func networkError(cause error) *Error {
	return &Error{Kind: KindNetwork, cause: cause}
}

func parseError(cause error) *Error {
	return &Error{Kind: KindParse, cause: cause}
}

func httpError(status int, body *ErrorBody) *Error {
	return &Error{Kind: KindHTTP, Status: status, Body: body}
}
