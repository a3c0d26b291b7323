package errors

import "fmt"

// ErrorType represents different types of errors that can occur
type ErrorType string

const (
	ErrorTypeNetwork     ErrorType = "network"
	ErrorTypeRateLimit   ErrorType = "rate_limit"
	ErrorTypeParsing     ErrorType = "parsing"
	ErrorTypeNotFound    ErrorType = "not_found"
	ErrorTypeClientError ErrorType = "client_error"
	ErrorTypeServerError ErrorType = "server_error"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents an archive transport error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
	URL     string
	Err     error
}

func (e *Error) Error() string {
	if e.URL != "" {
		return fmt.Sprintf("%s error (code %d) for %s: %s", e.Type, e.Code, e.URL, e.Message)
	}
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a typed error
func New(errorType ErrorType, code int, url, message string) *Error {
	return &Error{
		Type:    errorType,
		Message: message,
		Code:    code,
		URL:     url,
	}
}

// Wrap creates a typed error around an underlying cause
func Wrap(errorType ErrorType, url string, err error) *Error {
	return &Error{
		Type:    errorType,
		Message: err.Error(),
		URL:     url,
		Err:     err,
	}
}

// FromStatusCode maps a non-success HTTP status to a typed error
func FromStatusCode(statusCode int, url string) *Error {
	var errorType ErrorType
	switch {
	case statusCode == 404:
		errorType = ErrorTypeNotFound
	case statusCode == 429:
		errorType = ErrorTypeRateLimit
	case statusCode >= 500:
		errorType = ErrorTypeServerError
	case statusCode >= 400:
		errorType = ErrorTypeClientError
	default:
		errorType = ErrorTypeUnknown
	}
	return New(errorType, statusCode, url, fmt.Sprintf("unexpected status code: %d", statusCode))
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeRateLimit, ErrorTypeServerError:
		return true
	case ErrorTypeNotFound, ErrorTypeParsing, ErrorTypeClientError:
		return false
	default:
		return false
	}
}
