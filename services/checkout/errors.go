package checkout

import (
	"errors"
	"fmt"
)

// Error codes surfaced to handlers.
const (
	CodeValidation    = "validationError"
	CodeCoupon        = "couponError"
	CodeBookingFailed = "bookingFailed"
	CodeStorage       = "storageError"
)

// CheckoutError is a typed error with a stable code for the HTTP layer.
type CheckoutError struct {
	Code    string
	Message string
}

func (e *CheckoutError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewValidationError flags bad input at a wizard step; the step does not
// advance and the user recovers locally.
func NewValidationError(msg string) error {
	return &CheckoutError{Code: CodeValidation, Message: msg}
}

// NewCouponError flags an unusable coupon. It is shown inline and never
// blocks checking out without a coupon.
func NewCouponError(msg string) error {
	return &CheckoutError{Code: CodeCoupon, Message: msg}
}

// NewBookingFailedError is raised when identifier allocation exhausts its
// retry budget. Repeated collisions indicate a systemic problem worth
// surfacing rather than masking.
func NewBookingFailedError(msg string) error {
	return &CheckoutError{Code: CodeBookingFailed, Message: msg}
}

// NewStorageError wraps a store failure as a generic retry-able failure.
func NewStorageError(msg string) error {
	return &CheckoutError{Code: CodeStorage, Message: msg}
}

// CodeOf extracts the checkout error code, or "" for foreign errors.
func CodeOf(err error) string {
	var ce *CheckoutError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
