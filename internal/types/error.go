package types

import (
	"fmt"
	"net/http"
)

type ErrorCode string

const (
	InternalServiceError ErrorCode = "INTERNAL_SERVICE_ERROR"
	ValidationError      ErrorCode = "VALIDATION_ERROR"
	NotFound             ErrorCode = "NOT_FOUND"
)

func (e ErrorCode) String() string {
	return string(e)
}

// Error wraps an underlying error with a status code and a stable error code
// so callers can decide how to surface it without string matching.
type Error struct {
	Err        error
	StatusCode int
	ErrorCode  ErrorCode
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.ErrorCode.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewError(statusCode int, errorCode ErrorCode, err error) *Error {
	return &Error{
		Err:        err,
		StatusCode: statusCode,
		ErrorCode:  errorCode,
	}
}

func NewErrorWithMsg(statusCode int, errorCode ErrorCode, msg string) *Error {
	return NewError(statusCode, errorCode, fmt.Errorf("%s", msg))
}

func NewInternalServiceError(err error) *Error {
	return NewError(http.StatusInternalServerError, InternalServiceError, err)
}

func NewValidationFailedError(err error) *Error {
	return NewError(http.StatusBadRequest, ValidationError, err)
}
