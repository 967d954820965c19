package api

import (
	"errors"
	"fmt"
	"net/http"
)

// UserNotFoundError is returned when the osu! API has no user by that name.
type UserNotFoundError struct {
	Username string
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("osu! user %q not found", e.Username)
}

// IsUserNotFound checks if an error is a UserNotFoundError
func IsUserNotFound(err error) bool {
	var target *UserNotFoundError
	return errors.As(err, &target)
}

// APIError is a non-2xx response from the osu! API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("osu! api %s returned %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// IsNotFound checks if an error is a 404 from the osu! API.
func IsNotFound(err error) bool {
	var target *APIError
	return errors.As(err, &target) && target.StatusCode == http.StatusNotFound
}
