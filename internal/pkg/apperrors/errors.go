// internal/pkg/apperrors/errors.go
package apperrors

import "fmt"

// ValidationError indicates malformed or missing input. Surfaced to
// the caller verbatim; never retried.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidation creates a ValidationError with a formatted message.
func NewValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError indicates a missing cart, order, coupon or product.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Entity)
}

// NewNotFound creates a NotFoundError for the named entity.
func NewNotFound(entity string) *NotFoundError {
	return &NotFoundError{Entity: entity}
}

// InsufficientStockError indicates the requested quantity exceeds the
// available stock. Available is included so the client can re-query.
type InsufficientStockError struct {
	VariantID uint
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: only %d items available", e.Available)
}

// CouponIneligibleError carries the specific human-readable reason a
// coupon check failed, never a generic "invalid coupon".
type CouponIneligibleError struct {
	Code   string
	Reason string
}

func (e *CouponIneligibleError) Error() string {
	return e.Reason
}

// NewCouponIneligible creates a CouponIneligibleError for the given code.
func NewCouponIneligible(code, reason string) *CouponIneligibleError {
	return &CouponIneligibleError{Code: code, Reason: reason}
}

// InvalidTransitionError indicates an illegal order status change,
// carrying both the current and the requested status.
type InvalidTransitionError struct {
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid transition from %s to %s: %s", e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("invalid transition from %s to %s", e.From, e.To)
}

// ExternalServiceError wraps a failure from a collaborator (email,
// SMS). Callers log it and move on; it must never fail the primary
// operation.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
