// Package apperr defines the service-wide error taxonomy. Every failure a
// handler can return maps to a stable status/code/message triple so clients
// can tell "not found" from "conflict" from "forbidden".
package apperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is a caller-facing error with an HTTP status and a stable code.
type Error struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

var (
	ErrUserNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "USER-NOT-FOUND",
		Message: "user not found",
	}
	ErrPartyNotFound = &Error{
		Status:  http.StatusNotFound,
		Code:    "PARTY-NOT-FOUND",
		Message: "party not found",
	}
	ErrDuplicateApplication = &Error{
		Status:  http.StatusConflict,
		Code:    "PARTY-APPLICATION-DUPLICATED",
		Message: "an active application or membership already exists",
	}
	ErrNotAPartyMember = &Error{
		Status:  http.StatusBadRequest,
		Code:    "NOT-PARTY-MEMBER",
		Message: "user has no application for this party",
	}
	ErrAccessDenied = &Error{
		Status:  http.StatusForbidden,
		Code:    "ACCESS-DENIED",
		Message: "acting user lacks administrative rights on this party",
	}
	ErrInternal = &Error{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL",
		Message: "internal server error",
	}
)

// BadRequest builds a validation error with the given message.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Code: "BAD-REQUEST", Message: message}
}

// Conflict builds a conflict error with the given message.
func Conflict(message string) *Error {
	return &Error{Status: http.StatusConflict, Code: "CONFLICT", Message: message}
}

// Abort writes err as the JSON response. Non-taxonomy errors are masked as
// ErrInternal so store internals never leak to clients.
func Abort(c *gin.Context, err error) {
	e, ok := err.(*Error)
	if !ok {
		e = ErrInternal
	}
	c.AbortWithStatusJSON(e.Status, gin.H{"error": e})
}
