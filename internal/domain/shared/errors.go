package shared

import "fmt"

// DomainError represents a domain-level error with a stable machine-readable
// code and a human-readable message suitable for operator diagnosis.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is matches any DomainError carrying the same code, so the sentinel values
// below work with errors.Is against errors built by the helpers.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes surfaced by the billing engine
const (
	CodeAggregationFailure = "aggregation_failure"
	CodeValidationFailure  = "validation_failure"
	CodeNotFound           = "not_found"
	CodeTaxServiceFailure  = "tax_service_failure"
	CodeUnsupportedModel   = "unsupported_model"
	CodeCurrencyFailure    = "currency_failure"
	CodeAlreadyExists      = "already_exists"
)

// Common domain errors
var (
	ErrAggregationFailure = NewDomainError(CodeAggregationFailure, "Failed to aggregate events")
	ErrValidationFailure  = NewDomainError(CodeValidationFailure, "Record validation failed")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrTaxServiceFailure  = NewDomainError(CodeTaxServiceFailure, "Tax service returned an error")
	ErrUnsupportedModel   = NewDomainError(CodeUnsupportedModel, "Unknown aggregation type or charge model")
	ErrCurrencyFailure    = NewDomainError(CodeCurrencyFailure, "Unknown or unsupported currency")
	ErrAlreadyExists      = NewDomainError(CodeAlreadyExists, "Resource already exists")
)

// AggregationFailure builds an aggregation_failure error with a formatted message
func AggregationFailure(format string, args ...any) *DomainError {
	return NewDomainError(CodeAggregationFailure, fmt.Sprintf(format, args...))
}

// ValidationFailure builds a validation_failure error with a formatted message
func ValidationFailure(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidationFailure, fmt.Sprintf(format, args...))
}

// TaxServiceFailure wraps an error returned by the tax collaborator.
// Tax failures are always fatal for the whole tuple.
func TaxServiceFailure(cause error) *DomainError {
	return &DomainError{
		Code:    CodeTaxServiceFailure,
		Message: fmt.Sprintf("Tax service failed: %v", cause),
		cause:   cause,
	}
}

// UnsupportedModel builds an unsupported_model error for an unknown
// aggregation type or charge model. This is a configuration error and must
// never be retried.
func UnsupportedModel(kind, value string) *DomainError {
	return NewDomainError(CodeUnsupportedModel, fmt.Sprintf("Unsupported %s: %s", kind, value))
}

// CurrencyFailure builds a currency_failure error for an unknown currency code
func CurrencyFailure(code string) *DomainError {
	return NewDomainError(CodeCurrencyFailure, fmt.Sprintf("Unknown currency code: %s", code))
}
