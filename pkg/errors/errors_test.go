package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppErrorUnwrapsToSentinel(t *testing.T) {
	err := Newf(ErrNotFound, http.StatusNotFound, "document %q is not indexed", "doc9")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("errors.Is(err, ErrNotFound) = false")
	}
	if want := `not found: document "doc9" is not indexed`; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestHTTPStatusCodeFromAppError(t *testing.T) {
	err := New(ErrEmptyCorpus, http.StatusConflict, "no documents")
	if got := HTTPStatusCode(err); got != http.StatusConflict {
		t.Errorf("HTTPStatusCode = %d, want 409", got)
	}
}

func TestHTTPStatusCodeFromWrappedAppError(t *testing.T) {
	err := fmt.Errorf("building normalizer: %w",
		New(ErrConfiguration, http.StatusBadRequest, "unknown stemmer"))
	if got := HTTPStatusCode(err); got != http.StatusBadRequest {
		t.Errorf("HTTPStatusCode = %d, want 400", got)
	}
}

func TestHTTPStatusCodeFromBareSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrNotFound, http.StatusNotFound},
		{ErrConfiguration, http.StatusBadRequest},
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrEmptyCorpus, http.StatusConflict},
		{ErrInternal, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := HTTPStatusCode(tc.err); got != tc.want {
			t.Errorf("HTTPStatusCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
