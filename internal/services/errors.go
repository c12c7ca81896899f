package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorForbidden    ErrorCode = "forbidden"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ServiceError is an expected failure. Details carries every validation message when Code is invalid.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Details []string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error {
	return &ServiceError{Code: ErrorInvalid, Message: msg, Details: []string{msg}}
}
func NewForbiddenError(msg string) error { return &ServiceError{Code: ErrorForbidden, Message: msg} }
func NewNotFoundError(msg string) error  { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error {
	return &ServiceError{Code: ErrorConflict, Message: msg, Details: []string{msg}}
}
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

// NewValidationError reports every violation at once. It returns nil for an empty list.
func NewValidationError(details []string) error {
	if len(details) == 0 {
		return nil
	}
	return &ServiceError{Code: ErrorInvalid, Message: strings.Join(details, " "), Details: details}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a ServiceError with the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}

// ErrAlreadyExists is returned by stores when a create-if-absent write finds the id taken.
var ErrAlreadyExists = errors.New("already exists")

// ErrNotFound is returned by store updates that target a missing record. Reads return (nil, nil) instead.
var ErrNotFound = errors.New("not found")

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
