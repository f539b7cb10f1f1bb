package entity

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the delivery layer can map it to a stable status code
type ErrorKind string

const (
	KindValidation             ErrorKind = "VALIDATION_ERROR"
	KindNotFound               ErrorKind = "NOT_FOUND"
	KindCorruptFormat          ErrorKind = "CORRUPT_FORMAT"
	KindUnsupportedImageFormat ErrorKind = "UNSUPPORTED_IMAGE_FORMAT"
	KindUpstreamFailure        ErrorKind = "UPSTREAM_FAILURE"
	KindConflict               ErrorKind = "CONFLICT"
	KindUnauthorized           ErrorKind = "UNAUTHORIZED"
	KindInternal               ErrorKind = "INTERNAL_ERROR"
)

// AppError carries a kind and a message that is safe to show to callers.
// Err holds the underlying cause and is only ever logged.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(kind ErrorKind, message string, err error) *AppError {
	return &AppError{Kind: kind, Message: message, Err: err}
}

func NewValidationError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NewNotFoundError(format string, args ...interface{}) *AppError {
	return &AppError{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func NewConflictError(message string, err error) *AppError {
	return &AppError{Kind: KindConflict, Message: message, Err: err}
}

func NewUpstreamError(message string, err error) *AppError {
	return &AppError{Kind: KindUpstreamFailure, Message: message, Err: err}
}

func NewInternalError(message string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: message, Err: err}
}

// ErrVersionConflict is returned by repositories when a document changed since it was read
var ErrVersionConflict = errors.New("document was modified concurrently")
