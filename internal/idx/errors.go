package idx

import (
	"errors"
	"fmt"
)

// Argument errors, returned before any request is made
var (
	ErrNoSymbols     = errors.New("at least one symbol is required")
	ErrEmptySymbol   = errors.New("symbol must not be blank")
	ErrInvalidSymbol = errors.New("symbol is not a valid path segment")
	ErrDateRequired  = errors.New("date is required")
	ErrInvalidPage   = errors.New("page must not be negative")
)

// Mapping errors, returned when a decoded body does not match the expected shape
var (
	ErrMalformedResponse = errors.New("malformed response")
	ErrMissingField      = errors.New("missing required field")
	ErrInvalidField      = errors.New("invalid field")
)

// RequestError reports a failed request or an undecodable response.
// Transport failures, non-2xx statuses, invalid JSON and API error envelopes
// all surface as this one type; StatusCode is 0 when no response arrived.
type RequestError struct {
	Endpoint   string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("idx %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("idx %s: %s", e.Endpoint, e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// IsArgumentError reports whether err was caused by invalid call arguments
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrNoSymbols) ||
		errors.Is(err, ErrEmptySymbol) ||
		errors.Is(err, ErrInvalidSymbol) ||
		errors.Is(err, ErrDateRequired) ||
		errors.Is(err, ErrInvalidPage)
}
