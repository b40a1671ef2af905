package api

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned when the annotation server responds with a non-2xx
// HTTP status. Using a typed error allows callers to distinguish "not found"
// (404) from transient failures without string matching.
type APIError struct {
	StatusCode int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("annotation server status %d", e.StatusCode)
}

// IsNotFound reports whether err is an APIError with HTTP 404, typically
// meaning the dataset does not exist.
func IsNotFound(err error) bool {
	var e *APIError
	return errors.As(err, &e) && e.StatusCode == http.StatusNotFound
}

// IsUnauthorized reports whether err is an APIError with HTTP 401 or 403.
// This typically means the dataset is private and no (or an invalid) API key
// was provided.
func IsUnauthorized(err error) bool {
	var e *APIError
	return errors.As(err, &e) && (e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden)
}
