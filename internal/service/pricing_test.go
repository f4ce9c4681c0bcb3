package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"greek-irini/internal/domain"
	"greek-irini/internal/service"
)

func seedLookup() service.MenuLookup {
	items := make(map[string]domain.MenuItem)
	for _, m := range domain.SeedMenu() {
		items[m.ID] = m
	}
	return func(id string) (domain.MenuItem, bool) {
		m, ok := items[id]
		return m, ok
	}
}

func TestPriceCart(t *testing.T) {
	policy := domain.DefaultSettings().Policy()

	tests := []struct {
		name         string
		lines        []domain.CartLine
		deliveryType domain.DeliveryType
		subtotal     string
		fee          string
		total        string
		count        int
		belowMinimum bool
	}{
		{
			name:         "two_moussaka_delivery",
			lines:        []domain.CartLine{{MenuItemID: "moussaka", Quantity: 2}},
			deliveryType: domain.DeliveryTypeDelivery,
			subtotal:     "29.00", fee: "3.50", total: "32.50", count: 2,
		},
		{
			name:         "two_moussaka_pickup",
			lines:        []domain.CartLine{{MenuItemID: "moussaka", Quantity: 2}},
			deliveryType: domain.DeliveryTypePickup,
			subtotal:     "29.00", fee: "0", total: "29.00", count: 2,
		},
		{
			name: "free_delivery_from_threshold",
			lines: []domain.CartLine{
				{MenuItemID: "stifado", Quantity: 1},
				{MenuItemID: "souvlaki", Quantity: 1},
				{MenuItemID: "tzatziki", Quantity: 1},
			},
			deliveryType: domain.DeliveryTypeDelivery,
			subtotal:     "38.00", fee: "0", total: "38.00", count: 3,
		},
		{
			name:         "below_minimum",
			lines:        []domain.CartLine{{MenuItemID: "tzatziki", Quantity: 1}},
			deliveryType: domain.DeliveryTypeDelivery,
			subtotal:     "5.50", fee: "3.50", total: "9.00", count: 1, belowMinimum: true,
		},
		{
			name: "unknown_and_empty_lines_skipped",
			lines: []domain.CartLine{
				{MenuItemID: "removed-dish", Quantity: 3},
				{MenuItemID: "gyros", Quantity: 0},
				{MenuItemID: "gyros", Quantity: 2},
			},
			deliveryType: domain.DeliveryTypePickup,
			subtotal:     "27.00", fee: "0", total: "27.00", count: 2,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			q := service.PriceCart(testCase.lines, seedLookup(), testCase.deliveryType, policy, domain.LangDutch)
			assert.True(t, money(testCase.subtotal).Equal(q.Subtotal), "subtotal %s", q.Subtotal)
			assert.True(t, money(testCase.fee).Equal(q.DeliveryFee), "fee %s", q.DeliveryFee)
			assert.True(t, money(testCase.total).Equal(q.Total), "total %s", q.Total)
			assert.Equal(t, testCase.count, q.ItemCount)
			assert.Equal(t, testCase.belowMinimum, q.BelowMinimum())
		})
	}
}

func TestQuote_RemainingAndItems(t *testing.T) {
	policy := domain.DefaultSettings().Policy()
	q := service.PriceCart([]domain.CartLine{{MenuItemID: "baklava", Quantity: 2}}, seedLookup(), domain.DeliveryTypePickup, policy, domain.LangGreek)

	assert.True(t, money("2.00").Equal(q.Remaining()), "remaining %s", q.Remaining())

	items := q.Items()
	assert.Len(t, items, 1)
	assert.Equal(t, "baklava", items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, money("13.00").Equal(items[0].LineTotal()))
}
