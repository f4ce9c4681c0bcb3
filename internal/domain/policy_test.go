package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryPolicy_Serves(t *testing.T) {
	policy := DefaultSettings().Policy()

	tests := []struct {
		name       string
		postalCode string
		expected   bool
	}{
		{name: "restaurant_code", postalCode: "2562 HD", expected: true},
		{name: "city_centre", postalCode: "2514 CG", expected: true},
		{name: "no_space_lower_case", postalCode: "2514cg", expected: true},
		{name: "outside_area", postalCode: "9999 ZZ", expected: false},
		{name: "amsterdam", postalCode: "1234 AB", expected: false},
		{name: "too_short", postalCode: "25", expected: false},
		{name: "empty", postalCode: "", expected: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, policy.Serves(testCase.postalCode))
		})
	}
}

func TestDeliveryPolicy_DeliveryFee(t *testing.T) {
	policy := DefaultSettings().Policy()

	tests := []struct {
		name         string
		deliveryType DeliveryType
		subtotal     string
		expected     string
	}{
		{name: "delivery_below_free_threshold", deliveryType: DeliveryTypeDelivery, subtotal: "29.00", expected: "3.50"},
		{name: "delivery_at_free_threshold", deliveryType: DeliveryTypeDelivery, subtotal: "35.00", expected: "0"},
		{name: "pickup_never_pays", deliveryType: DeliveryTypePickup, subtotal: "15.00", expected: "0"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			fee := policy.DeliveryFee(testCase.deliveryType, decimal.RequireFromString(testCase.subtotal))
			assert.True(t, decimal.RequireFromString(testCase.expected).Equal(fee), "got %s", fee)
		})
	}
}

func TestDeliveryPolicy_EstimatedMinutes(t *testing.T) {
	policy := DefaultSettings().Policy()
	assert.Equal(t, 45, policy.EstimatedMinutes(DeliveryTypeDelivery))
	assert.Equal(t, 25, policy.EstimatedMinutes(DeliveryTypePickup))
}

func TestRestaurantSettings_ApplyGroup(t *testing.T) {
	settings := DefaultSettings()
	before := settings.DeliveryZones

	err := settings.ApplyGroup(SettingsDeliveryZones, []byte(`{"postal_codes":["2562"],"fee":2.5,"min_order":20,"free_from":40}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"2562"}, settings.DeliveryZones.PostalCodes)
	assert.True(t, decimal.RequireFromString("2.5").Equal(settings.DeliveryZones.Fee))
	assert.Len(t, before.PostalCodes, len(DenHaagPostalCodes), "earlier copy must stay untouched")

	assert.Error(t, settings.ApplyGroup("unknown", []byte(`{}`)))
	assert.Error(t, settings.ApplyGroup(SettingsPayments, []byte(`not json`)))
}

func TestSettingsPatch_Groups(t *testing.T) {
	zones := DefaultSettings().DeliveryZones
	payments := PaymentSettings{Cash: true}
	patch := SettingsPatch{DeliveryZones: &zones, Payments: &payments}

	assert.Equal(t, []string{SettingsDeliveryZones, SettingsPayments}, patch.Groups())

	applied := patch.Apply(DefaultSettings())
	assert.True(t, applied.Payments.Enabled(PaymentCash))
	assert.False(t, applied.Payments.Enabled(PaymentIDEAL))
}
