// Package apperr holds the user-facing error taxonomy returned by the
// extract, translate and improve operations.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for the caller.
type Kind int

const (
	// OperationFailed is any failure that is neither throttling nor a bad model.
	OperationFailed Kind = iota
	// RateLimitExceeded means the provider kept throttling after all retries.
	RateLimitExceeded
	// ModelUnavailable means the model identifier is missing or deprecated.
	ModelUnavailable
	// InvalidInput means a precondition failed before any network call.
	InvalidInput
)

func (k Kind) String() string {
	switch k {
	case RateLimitExceeded:
		return "rate_limit_exceeded"
	case ModelUnavailable:
		return "model_unavailable"
	case InvalidInput:
		return "invalid_input"
	default:
		return "operation_failed"
	}
}

// HTTPStatus is the status code handlers answer with.
func (k Kind) HTTPStatus() int {
	switch k {
	case RateLimitExceeded:
		return http.StatusTooManyRequests
	case ModelUnavailable:
		return http.StatusServiceUnavailable
	case InvalidInput:
		return http.StatusBadRequest
	default:
		return http.StatusBadGateway
	}
}

// Op names an orchestration operation.
type Op string

const (
	OpExtract   Op = "extract"
	OpTranslate Op = "translate"
	OpImprove   Op = "improve"
)

// Error is what callers see instead of the raw provider error.
type Error struct {
	Kind Kind
	Op   Op
	// Key is the localization key of the notification title. The
	// description lives under Key + "Desc".
	Key string
	// Err is the original error, kept for logging.
	Err error
}

func (e *Error) Error() string {
	switch e.Kind {
	case RateLimitExceeded:
		return "API quota exceeded, please try again later"
	case ModelUnavailable:
		return "the configured model is unavailable, please contact the maintainer"
	case InvalidInput:
		return "invalid input: " + e.Key
	}
	if e.Op != "" {
		return fmt.Sprintf("%s failed", e.Op)
	}
	return "operation failed"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// DescriptionKey is the localization key of the notification body.
func (e *Error) DescriptionKey() string {
	return e.Key + "Desc"
}

// New builds an Error for op, picking the localization key from kind.
func New(kind Kind, op Op, err error) *Error {
	e := &Error{Kind: kind, Op: op, Err: err}
	switch kind {
	case RateLimitExceeded:
		e.Key = "error.quotaExceeded"
	case ModelUnavailable:
		e.Key = "error.modelUnavailable"
	default:
		e.Key = operationKey(op)
	}
	return e
}

// Invalid reports a failed precondition identified by key, e.g. "error.noImage".
func Invalid(key string) *Error {
	return &Error{Kind: InvalidInput, Key: key}
}

// KindOf returns the Kind of err, or OperationFailed for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return OperationFailed
}

func operationKey(op Op) string {
	switch op {
	case OpExtract:
		return "error.extracting"
	case OpTranslate:
		return "error.translating"
	case OpImprove:
		return "error.improving"
	default:
		return "error.generic"
	}
}
