// Package apperr carries the error taxonomy shared by services and controllers.
// Every error surfaced to an HTTP caller is an *Error with a status and a stable code.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeValidation    = "validation_error"
	CodeUnauthorized  = "unauthorized"
	CodeNotFound      = "not_found"
	CodeConflict      = "admin_action_conflict"
	CodeInvalidStatus = "invalid_status"
	CodePersistence   = "persistence_error"
	CodeUnavailable   = "service_unavailable"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func Validation(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeValidation, fmt.Errorf(format, args...))
}

func Unauthorized(msg string) *Error {
	return New(http.StatusUnauthorized, CodeUnauthorized, errors.New(msg))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(http.StatusNotFound, CodeNotFound, fmt.Errorf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(http.StatusConflict, CodeConflict, fmt.Errorf(format, args...))
}

func InvalidStatus(format string, args ...interface{}) *Error {
	return New(http.StatusBadRequest, CodeInvalidStatus, fmt.Errorf(format, args...))
}

func Persistence(op string, err error) *Error {
	return New(http.StatusInternalServerError, CodePersistence, fmt.Errorf("%s: %w", op, err))
}

// StatusOf reports the HTTP status and code for err. Errors that are not *Error map to 500.
func StatusOf(err error) (int, string) {
	var ae *Error
	if errors.As(err, &ae) && ae.Status != 0 {
		return ae.Status, ae.Code
	}
	return http.StatusInternalServerError, CodePersistence
}

// Is reports whether err is an *Error carrying code.
func Is(err error, code string) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Code == code
}
