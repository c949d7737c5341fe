package llm

import (
	"errors"
	"fmt"
)

// DefaultErrorMessage is reported when a failed response carries no message.
const DefaultErrorMessage = "API Error"

// ErrMalformedResponse is returned when a successful response has no usable choice.
var ErrMalformedResponse = errors.New("malformed completion response")

// APIError is a non-success HTTP status or a transport failure.
type APIError struct {
	StatusCode int // 0 for transport failures
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultErrorMessage
}

func (e *APIError) Unwrap() error { return e.Err }

// UserMessage returns the human-readable part of err, suitable for a status line.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Error()
	}
	if errors.Is(err, ErrMalformedResponse) {
		return fmt.Sprintf("%s: unexpected response shape", DefaultErrorMessage)
	}
	return err.Error()
}
