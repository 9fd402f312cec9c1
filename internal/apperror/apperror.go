package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInvalidInput  = "INVALID_INPUT"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeForbidden     = "FORBIDDEN"
	CodeNotFound      = "NOT_FOUND"
	CodeConflict      = "CONFLICT"
	CodeUnavailable   = "UNAVAILABLE"
	CodeInternalError = "INTERNAL_ERROR"
)

// GenericMessage is the fallback shown to the user when an error carries no
// usable message of its own (connectivity failures, malformed responses).
const GenericMessage = "Something went wrong. Please try again."

type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// FromStatus builds an AppError out of an HTTP status and a server-provided
// message. An empty message falls back to GenericMessage.
func FromStatus(status int, message string) *AppError {
	if message == "" {
		message = GenericMessage
	}

	code := CodeInternalError
	switch {
	case status == http.StatusUnauthorized:
		code = CodeUnauthorized
	case status == http.StatusForbidden:
		code = CodeForbidden
	case status == http.StatusNotFound:
		code = CodeNotFound
	case status == http.StatusConflict:
		code = CodeConflict
	case status >= 400 && status < 500:
		code = CodeInvalidInput
	}

	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: status,
	}
}

// UserMessage extracts the user-facing message from any error. Every store
// funnels its failures through here so the message-or-fallback rule lives in
// exactly one place.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}

	return GenericMessage
}
