// Package apperror provides the typed error taxonomy shared by all workflow
// services, plus the standardized JSON envelopes returned to clients.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apperror

import (
	"errors"
	"net/http"
)

// Kind classifies an error into one of the handled failure families.
type Kind string

const (
	KindValidation    Kind = "validation"     // bad input, rejected before any transaction opens
	KindBusinessRule  Kind = "business_rule"  // invariant violated inside the transaction, rolled back
	KindAuthorization Kind = "authorization"  // role not permitted for the operation
	KindNotFound      Kind = "not_found"      // referenced entity absent
	KindReferential   Kind = "referential"    // FK violation surfaced from the persistence layer
	KindInternal      Kind = "internal"       // everything else; detail never reaches the client
)

// Machine-readable codes for business rule violations. Clients branch on
// these; the Detail string is for humans and may change.
const (
	CodeInsufficientStock      = "insufficient_stock"
	CodeDuplicateCode          = "duplicate_code"
	CodeDuplicateClosing       = "duplicate_closing_for_date"
	CodeDateClosed             = "date_already_closed"
	CodeFutureDateClosing      = "future_date_closing"
	CodeReturnQtyExceeded      = "return_quantity_exceeded"
	CodeSaleNotActive          = "sale_not_active"
	CodeAlreadyReceived        = "already_received"
	CodeAlreadyVoided          = "already_voided"
	CodeAlreadyApproved        = "already_resolved"
	CodeAlreadyReopened        = "already_reopened"
	CodePaymentMismatch        = "payment_sum_mismatch"
	CodeInactiveProduct        = "inactive_product"
	CodeMissingJustification   = "missing_justification"
	CodeMissingComprobante     = "missing_comprobante"
)

// Error is the single error type every service method returns on failure.
type Error struct {
	Kind   Kind
	Code   string
	Detail string
	Err    error // wrapped cause, logged but never serialized
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Detail + ": " + e.Err.Error()
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus maps the taxonomy onto response codes.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusUnprocessableEntity
	case KindBusinessRule, KindReferential:
		return http.StatusConflict
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func Validation(detail string) *Error {
	return &Error{Kind: KindValidation, Detail: detail}
}

// ValidationCode is Validation with a machine code clients can branch on.
func ValidationCode(code, detail string) *Error {
	return &Error{Kind: KindValidation, Code: code, Detail: detail}
}

func BusinessRule(code, detail string) *Error {
	return &Error{Kind: KindBusinessRule, Code: code, Detail: detail}
}

func Authorization(detail string) *Error {
	return &Error{Kind: KindAuthorization, Detail: detail}
}

func NotFound(detail string) *Error {
	return &Error{Kind: KindNotFound, Detail: detail}
}

func Referential(detail string, err error) *Error {
	return &Error{Kind: KindReferential, Detail: detail, Err: err}
}

func Internal(detail string, err error) *Error {
	return &Error{Kind: KindInternal, Detail: detail, Err: err}
}

// As extracts an *Error from any error chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// IsCode reports whether err is an *Error carrying the given code.
func IsCode(err error, code string) bool {
	e, ok := As(err)
	return ok && e.Code == code
}

// ── HTTP envelopes ────────────────────────────────────────────────────────────

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the client-safe envelope. Internal details are stripped.
func FromError(err error) (int, *APIError) {
	if e, ok := As(err); ok {
		if e.Kind == KindInternal {
			return http.StatusInternalServerError, New("Error interno del servidor")
		}
		return e.HTTPStatus(), &APIError{Detail: e.Detail, Code: e.Code}
	}
	return http.StatusInternalServerError, New("Error interno del servidor")
}

// ValidationFields wraps multiple field errors.
type ValidationFields struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationFields {
	return &ValidationFields{Detail: "Error de validacion", Fields: fields}
}
