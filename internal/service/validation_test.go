package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-irini/internal/domain"
	"greek-irini/internal/service"
)

func TestValidateCustomer(t *testing.T) {
	policy := domain.DefaultSettings().Policy()

	tests := []struct {
		name         string
		mutate       func(c *domain.CustomerInfo)
		deliveryType domain.DeliveryType
		expected     map[string]error
	}{
		{
			name:         "valid_delivery",
			mutate:       func(c *domain.CustomerInfo) {},
			deliveryType: domain.DeliveryTypeDelivery,
		},
		{
			name:         "city_centre_postal_code",
			mutate:       func(c *domain.CustomerInfo) { c.PostalCode = "2514 CG" },
			deliveryType: domain.DeliveryTypeDelivery,
		},
		{
			name:         "outside_area",
			mutate:       func(c *domain.CustomerInfo) { c.PostalCode = "9999 ZZ" },
			deliveryType: domain.DeliveryTypeDelivery,
			expected:     map[string]error{service.FieldPostalCode: service.ErrUnsupportedServiceArea},
		},
		{
			name:         "other_city",
			mutate:       func(c *domain.CustomerInfo) { c.PostalCode = "1234 AB" },
			deliveryType: domain.DeliveryTypeDelivery,
			expected:     map[string]error{service.FieldPostalCode: service.ErrUnsupportedServiceArea},
		},
		{
			name:         "pickup_ignores_address",
			mutate:       func(c *domain.CustomerInfo) { c.Address, c.PostalCode = "", "9999 ZZ" },
			deliveryType: domain.DeliveryTypePickup,
		},
		{
			name: "everything_wrong",
			mutate: func(c *domain.CustomerInfo) {
				*c = domain.CustomerInfo{Name: "E", Email: "eleni@", Phone: "12345", Address: "Str", PostalCode: " "}
			},
			deliveryType: domain.DeliveryTypeDelivery,
			expected: map[string]error{
				service.FieldName:       service.ErrRequiredField,
				service.FieldEmail:      service.ErrInvalidEmail,
				service.FieldPhone:      service.ErrInvalidPhone,
				service.FieldAddress:    service.ErrRequiredField,
				service.FieldPostalCode: service.ErrRequiredField,
			},
		},
		{
			name:         "international_phone",
			mutate:       func(c *domain.CustomerInfo) { c.Phone = "+30 210 123 4567" },
			deliveryType: domain.DeliveryTypePickup,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			c := validCustomer()
			testCase.mutate(&c)
			err := service.ValidateCustomer(c, testCase.deliveryType, policy)
			if testCase.expected == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, service.ErrValidationFailed)
			fields, ok := service.IsValidation(err)
			require.True(t, ok)
			assert.Len(t, fields, len(testCase.expected))
			for field, want := range testCase.expected {
				assert.ErrorIs(t, fields[field], want, field)
			}
		})
	}
}

func TestValidateField_NotApplicable(t *testing.T) {
	policy := domain.DefaultSettings().Policy()
	c := domain.CustomerInfo{}
	assert.NoError(t, service.ValidateField(service.FieldPostalCode, c, domain.DeliveryTypePickup, policy))
	assert.ErrorIs(t, service.ValidateField(service.FieldEmail, c, domain.DeliveryTypePickup, policy), service.ErrInvalidEmail)
}
