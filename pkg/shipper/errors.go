package shipper

import (
	"errors"
	"fmt"
)

// ShipperError represents a transport-level failure talking to a carrier.
type ShipperError struct {
	Carrier    string
	Code       string
	Message    string
	StatusCode int
	Retryable  bool
	Cause      error
}

// Error implements the error interface.
func (e *ShipperError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s error (%s): %s: %v", e.Carrier, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s error (%s): %s", e.Carrier, e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ShipperError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for ShipperError.
func (e *ShipperError) Is(target error) bool {
	t, ok := target.(*ShipperError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewShipperError creates a new ShipperError.
func NewShipperError(carrier, code, message string) *ShipperError {
	return &ShipperError{
		Carrier: carrier,
		Code:    code,
		Message: message,
	}
}

// WithCause adds a cause to the error.
func (e *ShipperError) WithCause(err error) *ShipperError {
	e.Cause = err
	return e
}

// WithStatusCode adds an HTTP status code to the error.
func (e *ShipperError) WithStatusCode(code int) *ShipperError {
	e.StatusCode = code
	return e
}

// WithRetryable marks the error as retryable.
func (e *ShipperError) WithRetryable(retryable bool) *ShipperError {
	e.Retryable = retryable
	return e
}

// InputError reports shipment data the derivation engine cannot safely
// default. It is raised before any carrier call.
type InputError struct {
	Field  string
	Reason string
	Kind   error
}

// NewInputError creates an InputError of the given kind.
func NewInputError(field, reason string, kind error) *InputError {
	return &InputError{Field: field, Reason: reason, Kind: kind}
}

// Error implements the error interface.
func (e *InputError) Error() string {
	kind := e.Kind
	if kind == nil {
		kind = ErrInvalidInput
	}
	return fmt.Sprintf("%s: %s %s", kind, e.Field, e.Reason)
}

// Unwrap exposes both the specific kind and ErrInvalidInput.
func (e *InputError) Unwrap() []error {
	if e.Kind == nil || e.Kind == ErrInvalidInput {
		return []error{ErrInvalidInput}
	}
	return []error{e.Kind, ErrInvalidInput}
}

// Sentinel errors for common shipping scenarios.
var (
	// ErrInvalidInput is the root of every caller input error.
	ErrInvalidInput = errors.New("invalid shipment input")

	// ErrInvalidAddress indicates the address is invalid or incomplete.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidPackage indicates package dimensions or weight are invalid.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrMissingCustomsData indicates a package lacks the price or description
	// needed to aggregate customs data.
	ErrMissingCustomsData = errors.New("missing customs data")

	// ErrAlreadySubmitted indicates the shipment already holds a successful result.
	ErrAlreadySubmitted = errors.New("shipment already submitted")

	// ErrServiceUnavailable indicates the carrier service is temporarily unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")

	// ErrAuthenticationFailed indicates carrier authentication failed.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrCarrierNotFound indicates the requested carrier is not registered.
	ErrCarrierNotFound = errors.New("carrier not found")
)

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var shipperErr *ShipperError
	if errors.As(err, &shipperErr) {
		return shipperErr.Retryable
	}
	return errors.Is(err, ErrServiceUnavailable)
}

// IsCallerError reports whether err is caller misuse rather than a carrier or
// transport failure.
func IsCallerError(err error) bool {
	return errors.Is(err, ErrInvalidInput) || errors.Is(err, ErrAlreadySubmitted)
}
