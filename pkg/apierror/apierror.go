package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies a failed API call.
type Kind int

const (
	// Timeout means the round trip exceeded the client's deadline.
	Timeout Kind = iota + 1
	// NetworkUnreachable covers connection-level failures: refused,
	// DNS, reset, no route.
	NetworkUnreachable
	// HTTPError is a non-2xx response with a server-supplied message.
	HTTPError
	// MalformedResponse is a 2xx response whose body failed to parse.
	// The raw body is carried on the error so the caller still sees it.
	MalformedResponse
	// ValidationError is raised before any network call when a request
	// payload is missing required fields.
	ValidationError
)

func (k Kind) String() string {
	switch k {
	case Timeout:
		return "timeout"
	case NetworkUnreachable:
		return "network_unreachable"
	case HTTPError:
		return "http_error"
	case MalformedResponse:
		return "malformed_response"
	case ValidationError:
		return "validation_error"
	default:
		return "unknown"
	}
}

// Error is the single error type surfaced by the request wrapper and
// re-raised untouched by every domain operation.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, set for HTTPError
	Message string
	RawBody string // set for MalformedResponse
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewTimeout(message string, err error) *Error {
	return &Error{Kind: Timeout, Message: message, Err: err}
}

func NewNetworkUnreachable(message string, err error) *Error {
	return &Error{Kind: NetworkUnreachable, Message: message, Err: err}
}

func NewHTTP(status int, message string) *Error {
	return &Error{Kind: HTTPError, Status: status, Message: message}
}

func NewMalformedResponse(rawBody string, err error) *Error {
	return &Error{Kind: MalformedResponse, Message: "invalid JSON response", RawBody: rawBody, Err: err}
}

func NewValidation(message string, err error) *Error {
	return &Error{Kind: ValidationError, Message: message, Err: err}
}

func kindOf(err error) (Kind, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind, true
	}
	return 0, false
}

func IsTimeout(err error) bool {
	k, ok := kindOf(err)
	return ok && k == Timeout
}

func IsNetworkUnreachable(err error) bool {
	k, ok := kindOf(err)
	return ok && k == NetworkUnreachable
}

func IsHTTPError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == HTTPError
}

func IsMalformedResponse(err error) bool {
	k, ok := kindOf(err)
	return ok && k == MalformedResponse
}

func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ValidationError
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// Retryable reports whether an error is safe to retry automatically.
// Only transport-level read failures qualify; HTTP errors carry server
// intent and validation errors will never succeed on retry.
func Retryable(err error) bool {
	k, ok := kindOf(err)
	if !ok {
		return false
	}
	return k == Timeout || k == NetworkUnreachable
}
