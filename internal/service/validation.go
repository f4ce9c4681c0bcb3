package service

import (
	"regexp"
	"strings"

	"greek-irini/internal/domain"
)

const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldAddress    = "address"
	FieldPostalCode = "postal_code"
)

var (
	emailPattern     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	dutchPhone       = regexp.MustCompile(`^(\+31|0031|0)[1-9][0-9]{8}$`)
	internationalTel = regexp.MustCompile(`^\+?[0-9]{10,14}$`)
	phoneNoise       = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// RequiredFields lists the customer fields a submission needs for the given type.
func RequiredFields(t domain.DeliveryType) []string {
	if t == domain.DeliveryTypePickup {
		return []string{FieldName, FieldEmail, FieldPhone}
	}
	return []string{FieldName, FieldEmail, FieldPhone, FieldAddress, FieldPostalCode}
}

// ValidateField checks a single field. Fields that do not apply to the delivery
// type always pass.
func ValidateField(field string, c domain.CustomerInfo, t domain.DeliveryType, policy domain.DeliveryPolicy) error {
	switch field {
	case FieldName:
		if len([]rune(strings.TrimSpace(c.Name))) < 2 {
			return ErrRequiredField
		}
	case FieldEmail:
		if !emailPattern.MatchString(strings.TrimSpace(c.Email)) {
			return ErrInvalidEmail
		}
	case FieldPhone:
		phone := phoneNoise.Replace(strings.TrimSpace(c.Phone))
		if !dutchPhone.MatchString(phone) && !internationalTel.MatchString(phone) {
			return ErrInvalidPhone
		}
	case FieldAddress:
		if t != domain.DeliveryTypeDelivery {
			return nil
		}
		if len([]rune(strings.TrimSpace(c.Address))) < 5 {
			return ErrRequiredField
		}
	case FieldPostalCode:
		if t != domain.DeliveryTypeDelivery {
			return nil
		}
		if strings.TrimSpace(c.PostalCode) == "" {
			return ErrRequiredField
		}
		if !policy.Serves(c.PostalCode) {
			return ErrUnsupportedServiceArea
		}
	}
	return nil
}

// ValidateCustomer runs every required field and returns a *ValidationError
// when any of them fails.
func ValidateCustomer(c domain.CustomerInfo, t domain.DeliveryType, policy domain.DeliveryPolicy) error {
	errs := FieldErrors{}
	for _, field := range RequiredFields(t) {
		if err := ValidateField(field, c, t, policy); err != nil {
			errs[field] = err
		}
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
