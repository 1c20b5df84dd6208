package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrRetryExhausted is returned when all retry attempts are exhausted.
	ErrRetryExhausted = errors.New("retry attempts exhausted")

	// ErrContextCancelled is returned when the context is cancelled while
	// waiting out a backoff or a rate limit cooldown.
	ErrContextCancelled = errors.New("context cancelled")
)

// ErrorClass classifies a request failure. The class decides whether the
// retry policy re-attempts the request: retrying a malformed request or a
// permission error wastes budget and can mask bugs, so only transient
// classes are retryable.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors other than 429.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents HTTP 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents connection and timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents schema or payload decode failures.
	ErrorClassDecode ErrorClass = "decode"
)

// APIError is a terminal request error with enough context to diagnose
// without re-running: the endpoint, the status, the classification, how
// many attempts were made, and the underlying cause.
type APIError struct {
	Endpoint   string
	StatusCode int
	Class      ErrorClass
	Attempts   int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("stats %s error on %s (status %d, %d attempts)",
		e.Class, e.Endpoint, e.StatusCode, e.Attempts)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyStatus maps an HTTP status code to its error class.
func classifyStatus(statusCode int) ErrorClass {
	switch {
	case statusCode == 429:
		return ErrorClassRateLimit
	case statusCode >= 400 && statusCode < 500:
		return ErrorClassClient
	case statusCode >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// shouldRetry reports whether an error class is transient. 429 and 5xx
// and network failures are retried; other 4xx and decode failures are
// contract violations and propagate immediately.
func shouldRetry(class ErrorClass) bool {
	switch class {
	case ErrorClassServer, ErrorClassRateLimit, ErrorClassNetwork:
		return true
	default:
		return false
	}
}
