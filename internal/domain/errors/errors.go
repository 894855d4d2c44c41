package errors

import (
	"errors"
	"net/http"
)

// Code classifies domain failures independently from transport.
type Code string

const (
	CodeInvalidTransition Code = "invalid_transition"
	CodeUnauthorized      Code = "unauthorized"
	CodeUnauthenticated   Code = "unauthenticated"
	CodeAmountMismatch    Code = "amount_mismatch"
	CodeConflict          Code = "conflict"
	CodeAlreadyReconciled Code = "already_reconciled"
	CodeAlreadyExists     Code = "already_exists"
	CodeNotFound          Code = "not_found"
	CodeValidation        Code = "validation_error"
	CodeInternal          Code = "internal_error"
)

// Metadata describes how a code is surfaced to callers.
type Metadata struct {
	HTTPStatus    int
	Retryable     bool
	PublicMessage string
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidTransition: {HTTPStatus: http.StatusConflict, PublicMessage: "action is not allowed in the current order state"},
	CodeUnauthorized:      {HTTPStatus: http.StatusForbidden, PublicMessage: "you are not allowed to act on this order"},
	CodeUnauthenticated:   {HTTPStatus: http.StatusUnauthorized, PublicMessage: "authentication required"},
	CodeAmountMismatch:    {HTTPStatus: http.StatusUnprocessableEntity, PublicMessage: "payment amount does not match the order"},
	CodeConflict:          {HTTPStatus: http.StatusConflict, Retryable: true, PublicMessage: "order was modified concurrently, retry with fresh state"},
	CodeAlreadyReconciled: {HTTPStatus: http.StatusOK, PublicMessage: "payment already reconciled"},
	CodeAlreadyExists:     {HTTPStatus: http.StatusConflict, PublicMessage: "resource already exists"},
	CodeNotFound:          {HTTPStatus: http.StatusNotFound, PublicMessage: "resource not found"},
	CodeValidation:        {HTTPStatus: http.StatusBadRequest, PublicMessage: "request validation failed"},
	CodeInternal:          {HTTPStatus: http.StatusInternalServerError, Retryable: true, PublicMessage: "internal error"},
}

// MetadataFor returns metadata for code, falling back to internal error.
func MetadataFor(code Code) Metadata {
	if md, ok := metadataByCode[code]; ok {
		return md
	}
	return metadataByCode[CodeInternal]
}

// Error is a typed domain error. Two errors match with errors.Is when their codes are equal.
type Error struct {
	code    Code
	message string
	cause   error
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{code: code, message: message, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.message + ": " + e.cause.Error()
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Code reports the classification of the error.
func (e *Error) Code() Code { return e.code }

// Message returns the message without the cause chain.
func (e *Error) Message() string { return e.message }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.code == e.code
}

// As extracts the first *Error in the chain.
func As(err error) (*Error, bool) {
	var target *Error
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}

// CodeOf returns the code of err or CodeInternal when err carries none.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.code
	}
	return CodeInternal
}

// IsRetryable reports whether a caller may retry the failed operation with fresh state.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return MetadataFor(CodeOf(err)).Retryable
}

var (
	ErrInvalidTransition = New(CodeInvalidTransition, "invalid transition")
	ErrUnauthorized      = New(CodeUnauthorized, "unauthorized")
	ErrUnauthenticated   = New(CodeUnauthenticated, "unauthenticated")
	ErrAmountMismatch    = New(CodeAmountMismatch, "amount mismatch")
	ErrConflict          = New(CodeConflict, "conflict")
	ErrAlreadyReconciled = New(CodeAlreadyReconciled, "already reconciled")
	ErrAlreadyExists     = New(CodeAlreadyExists, "already exists")
	ErrNotFound          = New(CodeNotFound, "not found")
	ErrValidation        = New(CodeValidation, "validation failed")
)
