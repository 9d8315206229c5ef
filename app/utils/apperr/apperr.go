package apperr

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindAuthenticationRequired
	KindAuthorizationDenied
	KindNotFound
	KindValidationFailed
	KindPaymentVerificationFailed
	KindGatewayMisconfigured
	KindGateway
	KindPersistence
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequired:
		return "authentication_required"
	case KindAuthorizationDenied:
		return "authorization_denied"
	case KindNotFound:
		return "not_found"
	case KindValidationFailed:
		return "validation_failed"
	case KindPaymentVerificationFailed:
		return "payment_verification_failed"
	case KindGatewayMisconfigured:
		return "gateway_misconfigured"
	case KindGateway:
		return "gateway_error"
	case KindPersistence:
		return "persistence_failure"
	}
	return "internal"
}

// Status is the HTTP status code an error of this kind is answered with.
func (k Kind) Status() int {
	switch k {
	case KindAuthenticationRequired:
		return http.StatusUnauthorized
	case KindAuthorizationDenied:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidationFailed, KindPaymentVerificationFailed:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Exposed reports whether Message may be shown to the client verbatim.
func (k Kind) Exposed() bool {
	switch k {
	case KindInternal, KindPersistence, KindGatewayMisconfigured:
		return false
	}
	return true
}

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated() *Error {
	return New(KindAuthenticationRequired, "authentication required")
}

func Forbidden(message string) *Error {
	return New(KindAuthorizationDenied, message)
}

func NotFound(message string) *Error {
	return New(KindNotFound, message)
}

func Validation(message string) *Error {
	return New(KindValidationFailed, message)
}

func Persistence(err error) *Error {
	return Wrap(KindPersistence, "persistence failure", err)
}

// KindOf returns the kind of the first *Error in err's chain. Errors outside
// the taxonomy are internal.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// PublicMessage is the text that can be returned to a client for err.
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind.Exposed() {
		return appErr.Message
	}
	if KindOf(err) == KindGatewayMisconfigured {
		return "payment gateway is not configured"
	}
	return "internal server error"
}
