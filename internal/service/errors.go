package service

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrRequiredField          = errors.New("required field")
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrInvalidPhone           = errors.New("invalid phone number")
	ErrUnsupportedServiceArea = errors.New("postal code outside delivery area")
	ErrValidationFailed       = errors.New("validation failed")

	ErrBelowMinimumOrder        = errors.New("subtotal below minimum order amount")
	ErrEmptyCart                = errors.New("cart is empty")
	ErrPaymentMethodUnavailable = errors.New("payment method not available")
	ErrPaymentFailed            = errors.New("payment failed")
	ErrCheckoutBusy             = errors.New("checkout is processing")
	ErrInvalidStep              = errors.New("action not allowed in current checkout step")

	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
)

// FieldErrors maps a customer field name to the rule it broke.
type FieldErrors map[string]error

func (f FieldErrors) Fields() []string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}

// Messages is the JSON-friendly view, keyed by field.
func (f FieldErrors) Messages() map[string]string {
	out := make(map[string]string, len(f))
	for k, err := range f {
		out[k] = err.Error()
	}
	return out
}

type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, name := range e.Fields.Fields() {
		parts = append(parts, name+": "+e.Fields[name].Error())
	}
	return ErrValidationFailed.Error() + " (" + strings.Join(parts, ", ") + ")"
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// IsValidation reports whether err carries field-level errors and returns them.
func IsValidation(err error) (FieldErrors, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Fields, true
	}
	return nil, false
}
