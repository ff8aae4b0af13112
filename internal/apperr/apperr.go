// Package apperr defines the error taxonomy shared by the request pipelines.
// Each error carries a short client-facing message; the wrapped cause is for
// server-side logs only.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindValidation      Kind = "validation"
	KindUnauthenticated Kind = "unauthenticated"
	KindForbidden       Kind = "forbidden"
	KindNotFound        Kind = "not_found"
	KindConflict        Kind = "conflict"
	KindConfiguration   Kind = "configuration"
	KindUpstream        Kind = "upstream"
	KindMalformedAI     Kind = "malformed_ai_response"
	KindUnparsablePDF   Kind = "unparsable_pdf"
	KindEmptyDocument   Kind = "empty_document"
	KindInternal        Kind = "internal"
)

type Error struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, status int, msg string, cause error) *Error {
	return &Error{Kind: kind, Status: status, Message: msg, Err: cause}
}

func Validation(msg string) *Error {
	return newErr(KindValidation, http.StatusBadRequest, msg, nil)
}

func Unauthenticated(msg string) *Error {
	return newErr(KindUnauthenticated, http.StatusUnauthorized, msg, nil)
}

func Forbidden() *Error {
	return newErr(KindForbidden, http.StatusForbidden, "Access denied", nil)
}

func NotFound(what string) *Error {
	return newErr(KindNotFound, http.StatusNotFound, what+" not found", nil)
}

func Conflict(msg string) *Error {
	return newErr(KindConflict, http.StatusConflict, msg, nil)
}

func Configuration(cause error) *Error {
	return newErr(KindConfiguration, http.StatusInternalServerError, "AI service is not configured", cause)
}

// Upstream keeps the upstream status when it is a usable HTTP error code.
func Upstream(status int, cause error) *Error {
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return newErr(KindUpstream, status, "AI service error", cause)
}

func MalformedAI(cause error) *Error {
	return newErr(KindMalformedAI, http.StatusInternalServerError, "Failed to parse AI response", cause)
}

func UnparsablePDF(cause error) *Error {
	return newErr(KindUnparsablePDF, http.StatusBadRequest, "Failed to parse PDF. Make sure it's a valid PDF file.", cause)
}

func EmptyDocument() *Error {
	return newErr(KindEmptyDocument, http.StatusBadRequest, "PDF appears to be empty or contains too little text", nil)
}

func Internal(msg string, cause error) *Error {
	return newErr(KindInternal, http.StatusInternalServerError, msg, cause)
}

// As extracts an *Error from err. Unknown errors become Internal.
func As(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("Internal server error", err)
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
