package domain

import "errors"

var (
	ErrValidation             = errors.New("validation failed")
	ErrAdmissionDenied        = errors.New("too many unpaid cases")
	ErrPaymentNodeUnavailable = errors.New("payment node unavailable")
	ErrInvoiceCreationFailed  = errors.New("invoice creation failed")
	ErrPersistence            = errors.New("persistence failure")
	ErrAlreadyPaid            = errors.New("case already paid")
	ErrNotPaid                = errors.New("case not paid")
	ErrAlreadyAwarded         = errors.New("case already awarded")
	ErrAlreadyCanceled        = errors.New("case already canceled")
	ErrOverflow               = errors.New("amount out of range")
	ErrNotFound               = errors.New("not found")
	ErrForbidden              = errors.New("action not allowed for this party")
	ErrAmountMismatch         = errors.New("settled amount does not cover amount owed")
)

// ErrTooManyUnpaidOrders is the admission controller's name for ErrAdmissionDenied.
var ErrTooManyUnpaidOrders = ErrAdmissionDenied

// ValidationError carries a message that is safe to show to the caller.
type ValidationError struct {
	Reason string
}

func NewValidationError(reason string) *ValidationError {
	return &ValidationError{Reason: reason}
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
