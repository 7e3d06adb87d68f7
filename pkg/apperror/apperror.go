package apperror

import (
	"errors"
	"net/http"
)

// Exception is an error that knows which HTTP status it maps to.
type Exception struct {
	Message    string
	StatusCode int
}

func (e *Exception) Error() string {
	return e.Message
}

// Is reports whether target is an Exception with the same status code, so that
// errors.Is(Validation("x"), ErrValidation) holds.
func (e *Exception) Is(target error) bool {
	t, ok := target.(*Exception)
	if !ok {
		return false
	}
	return t.StatusCode == e.StatusCode
}

var (
	ErrNotFound     = &Exception{Message: "not found", StatusCode: http.StatusNotFound}
	ErrForbidden    = &Exception{Message: "forbidden", StatusCode: http.StatusForbidden}
	ErrUnauthorized = &Exception{Message: "unauthorized", StatusCode: http.StatusUnauthorized}
	ErrValidation   = &Exception{Message: "validation failed", StatusCode: http.StatusBadRequest}
	ErrConflict     = &Exception{Message: "conflict", StatusCode: http.StatusConflict}
)

func NotFound(msg string) error {
	return &Exception{Message: msg, StatusCode: http.StatusNotFound}
}

func Forbidden(msg string) error {
	return &Exception{Message: msg, StatusCode: http.StatusForbidden}
}

func Unauthorized(msg string) error {
	return &Exception{Message: msg, StatusCode: http.StatusUnauthorized}
}

func Validation(msg string) error {
	return &Exception{Message: msg, StatusCode: http.StatusBadRequest}
}

func Conflict(msg string) error {
	return &Exception{Message: msg, StatusCode: http.StatusConflict}
}

// StatusCode returns the HTTP status carried by err, or 500 for anything else.
func StatusCode(err error) int {
	var appErr *Exception
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
