// Package apperr defines the error taxonomy surfaced by the API. Every
// failure a caller can act on carries a stable kind plus a human-readable
// message; anything else is reported as a generic internal error.
package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Kind string

const (
	KindValidation            Kind = "validation_error"
	KindNotFound              Kind = "not_found"
	KindForbidden             Kind = "forbidden"
	KindForbiddenRole         Kind = "forbidden_role"
	KindDuplicateEmail        Kind = "duplicate_email"
	KindInvalidCredentials    Kind = "invalid_credentials"
	KindInvalidToken          Kind = "invalid_token"
	KindExpiredToken          Kind = "expired_token"
	KindInsufficientQuantity  Kind = "insufficient_quantity"
	KindInvalidTransition     Kind = "invalid_transition"
	KindRestaurantNotApproved Kind = "restaurant_not_approved"
	KindConflict              Kind = "conflict"
	KindRateLimited           Kind = "rate_limit_exceeded"
	KindInternal              Kind = "internal"
)

type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// HTTPStatus maps an error kind to its response status code
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation, KindInsufficientQuantity, KindRestaurantNotApproved:
		return http.StatusBadRequest
	case KindInvalidCredentials, KindInvalidToken, KindExpiredToken:
		return http.StatusUnauthorized
	case KindForbidden, KindForbiddenRole:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindDuplicateEmail, KindConflict:
		return http.StatusConflict
	case KindInvalidTransition:
		return http.StatusUnprocessableEntity
	case KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// Write renders err as the structured error response. Errors that are not
// *Error are masked as internal so no storage or stack detail leaks out.
func Write(c *gin.Context, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = New(KindInternal, "an internal error occurred")
	}
	c.JSON(e.HTTPStatus(), gin.H{"error": e})
}

// Abort writes the error and stops the handler chain (for middleware)
func Abort(c *gin.Context, err error) {
	Write(c, err)
	c.Abort()
}
