// Package apperr defines the application's failure taxonomy. Every failure in
// the auth core is constructed as a tagged *Error at the point it occurs and
// converted exactly once at a protocol boundary: to an HTTP status plus JSON
// body for REST, or to a GraphQL error extension. Both conversions read the
// same wire table.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind tags an Error with its failure category.
type Kind int

const (
	KindValidation Kind = iota
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUpstreamOAuth
	KindRepository
	KindInternal
)

type wireMapping struct {
	status  int
	code    string
	generic string // non-empty: message presented instead of the real one
}

// wireTable is the single source of truth for how each Kind appears on the
// wire. HTTP status and GraphQL extensions.code are both derived from it.
var wireTable = map[Kind]wireMapping{
	KindValidation:    {status: http.StatusBadRequest, code: "Validation"},
	KindUnauthorized:  {status: http.StatusUnauthorized, code: "Unauthorized"},
	KindForbidden:     {status: http.StatusForbidden, code: "Forbidden"},
	KindNotFound:      {status: http.StatusNotFound, code: "NotFound"},
	KindConflict:      {status: http.StatusConflict, code: "Conflict"},
	KindUpstreamOAuth: {status: http.StatusBadGateway, code: "UpstreamOAuthFailure"},
	KindRepository:    {status: http.StatusInternalServerError, code: "RepositoryFailure", generic: "internal error"},
	KindInternal:      {status: http.StatusInternalServerError, code: "Internal", generic: "internal error"},
}

// Error is the tagged error value passed between components. The message
// returned by Error() is already safe to surface: Repository and Internal
// errors read as a generic "internal error", with the real cause retained
// for logging via Cause/Unwrap.
type Error struct {
	Kind    Kind
	Field   string // set for KindValidation only
	message string
	cause   error
}

func (e *Error) Error() string {
	if m := wireTable[e.Kind]; m.generic != "" {
		return m.generic
	}
	return e.message
}

func (e *Error) Unwrap() error { return e.cause }

// Extensions implements gqlerrors.ExtendedError so that an *Error returned
// from a GraphQL resolver carries the taxonomy code in extensions.code.
func (e *Error) Extensions() map[string]interface{} {
	return map[string]interface{}{"code": wireTable[e.Kind].code}
}

func Validation(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, message: message}
}

func UnauthorizedWrap(cause error, message string) *Error {
	return &Error{Kind: KindUnauthorized, message: message, cause: cause}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, message: message}
}

func UpstreamOAuth(cause error, reason string) *Error {
	return &Error{Kind: KindUpstreamOAuth, message: reason, cause: cause}
}

func Repository(cause error) *Error {
	return &Error{Kind: KindRepository, cause: cause}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, cause: cause}
}

// From coerces any error into a tagged *Error. Errors that are not already
// tagged become KindInternal, keeping the original as cause.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HTTPStatus returns the REST status code for err's kind.
func HTTPStatus(err error) int {
	return wireTable[From(err).Kind].status
}

// Code returns the wire code string shared by the REST body and the GraphQL
// extensions.
func Code(err error) string {
	return wireTable[From(err).Kind].code
}

// Message returns the wire-safe human message for err.
func Message(err error) string {
	return From(err).Error()
}

// Cause returns the internal cause of err, for logging. Nil when the error
// carries no underlying cause.
func Cause(err error) error {
	return From(err).cause
}

// IsKind reports whether err is a tagged error of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func (k Kind) String() string {
	if m, ok := wireTable[k]; ok {
		return m.code
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}
