package shared

import (
	"errors"
	"net/http"
)

type AppError struct {
	StatusCode int
	Message    string
	Data       interface{}
	Err        error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(statusCode int, err error, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Message:    message,
		Err:        err,
	}
}

func NewBadRequestError(err error, message string) *AppError {
	if message == "" {
		message = "Bad Request"
	}
	return NewAppError(http.StatusBadRequest, err, message)
}

func NewValidationError(details interface{}) *AppError {
	appErr := NewAppError(http.StatusBadRequest, nil, "Validation failed")
	appErr.Data = details
	return appErr
}

func NewNotFoundError(err error, message string) *AppError {
	if message == "" {
		message = "Not Found"
	}
	return NewAppError(http.StatusNotFound, err, message)
}

func NewConflictError(err error, message string) *AppError {
	if message == "" {
		message = "Conflict"
	}
	return NewAppError(http.StatusConflict, err, message)
}

func NewTooManyRequestsError(message string) *AppError {
	if message == "" {
		message = "Too Many Requests"
	}
	return NewAppError(http.StatusTooManyRequests, nil, message)
}

func NewInternalError(err error) *AppError {
	return NewAppError(http.StatusInternalServerError, err, "Internal Server Error")
}

func GetAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsNotFound reports whether err carries a 404 status.
func IsNotFound(err error) bool {
	appErr, ok := GetAppError(err)
	return ok && appErr.StatusCode == http.StatusNotFound
}
