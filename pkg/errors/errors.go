// Package errors defines the error taxonomy of the retrieval engine:
// sentinel errors for the failure classes the core distinguishes, an
// AppError wrapper carrying an HTTP status for the transport adapter,
// and a mapping from any error to a response code.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrConfiguration covers invalid weighting scheme names, unknown
	// stemmer identifiers, bad embedding parameters, and malformed
	// relevance judgments. Never retried automatically.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrNotFound covers operations referencing a document or term whose
	// existence is required, such as removing an unknown document id.
	ErrNotFound = errors.New("not found")

	// ErrEmptyCorpus covers index builds or embedding training attempted
	// with zero documents. Prior state is left untouched.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrInvalidInput covers malformed requests at the transport boundary.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal covers unexpected failures.
	ErrInternal = errors.New("internal error")
)

type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConfiguration), errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrEmptyCorpus):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
