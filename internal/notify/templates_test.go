package notify

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"greek-irini/internal/domain"
)

func testOrder() domain.Order {
	return domain.Order{
		ID: "ORD-LX2K9A-1F3C",
		Items: []domain.OrderItem{
			{ID: "moussaka", Name: "Moussaka", Price: decimal.RequireFromString("14.50"), Quantity: 2},
			{ID: "baklava", Name: "Baklava", Price: decimal.RequireFromString("6.50"), Quantity: 1},
		},
		Subtotal:    decimal.RequireFromString("35.50"),
		DeliveryFee: decimal.Zero,
		Total:       decimal.RequireFromString("35.50"),
		Payment:     domain.PaymentInfo{Method: domain.PaymentIDEAL, Status: domain.PaymentPaid},
		Delivery:    domain.DeliveryInfo{Type: domain.DeliveryTypeDelivery},
		Customer: domain.CustomerInfo{
			Name: "Eleni", Email: "eleni@example.nl", Address: "Weimarstraat 10", PostalCode: "2562 HD", City: "Den Haag",
		},
	}
}

func TestOrderConfirmation(t *testing.T) {
	restaurant := domain.DefaultSettings().GeneralSettings

	tests := []struct {
		name     string
		lang     domain.Language
		mutate   func(o *domain.Order)
		subject  string
		expected map[string]string
	}{
		{
			name:    "dutch_free_delivery",
			lang:    domain.LangDutch,
			mutate:  func(o *domain.Order) {},
			subject: "Orderbevestiging #ORD-LX2K9A-1F3C",
			expected: map[string]string{
				"delivery_fee":   "Gratis",
				"total":          "€35.50",
				"payment_status": "Betaald",
				"address":        "Weimarstraat 10, 2562 HD Den Haag",
				"estimated_time": "30-45 minuten",
				"order_items":    "2x Moussaka - €29.00\n1x Baklava - €6.50",
				"notes":          "Geen opmerkingen",
			},
		},
		{
			name: "polish_pickup_cash",
			lang: domain.LangPolish,
			mutate: func(o *domain.Order) {
				o.Delivery.Type = domain.DeliveryTypePickup
				o.Payment = domain.PaymentInfo{Method: domain.PaymentCash, Status: domain.PaymentUnpaid}
			},
			subject: "Potwierdzenie zamówienia #ORD-LX2K9A-1F3C",
			expected: map[string]string{
				"delivery_type":  "Odbiór własny",
				"payment_method": "Gotówka przy odbiorze",
				"payment_status": "Do zapłaty przy odbiorze",
				"estimated_time": "15-20 minut",
			},
		},
		{
			name: "greek_falls_back_to_dutch_with_fee",
			lang: domain.LangGreek,
			mutate: func(o *domain.Order) {
				o.DeliveryFee = decimal.RequireFromString("3.5")
				o.Customer.Notes = "Bel niet aan"
			},
			subject: "Orderbevestiging #ORD-LX2K9A-1F3C",
			expected: map[string]string{
				"delivery_fee": "€3.50",
				"notes":        "Bel niet aan",
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			o := testOrder()
			testCase.mutate(&o)
			msg := OrderConfirmation(o, testCase.lang, restaurant)

			assert.Equal(t, KindOrderConfirmation, msg.Kind)
			assert.Equal(t, "eleni@example.nl", msg.To)
			assert.Equal(t, testCase.subject, msg.Subject)
			for field, want := range testCase.expected {
				assert.Equal(t, want, msg.Fields[field], field)
			}
		})
	}
}

func TestReservationTemplates(t *testing.T) {
	restaurant := domain.DefaultSettings().GeneralSettings
	res := domain.Reservation{
		CustomerName: "Maria", CustomerEmail: "maria@example.nl", Date: "2026-06-12", Time: "19:30", NumberOfGuests: 4,
	}

	confirm := ReservationConfirmation(res, "", domain.LangDutch, restaurant)
	assert.Equal(t, "4", confirm.Fields["guests"])
	assert.Equal(t, "Geen", confirm.Fields["special_requests"])
	assert.Equal(t, "Alles is klaar voor u!", confirm.Fields["admin_notes"])
	assert.True(t, strings.HasPrefix(confirm.Subject, "✓ Reserveringsbevestiging"))

	reject := ReservationRejection(res, "20:30", domain.LangPolish, restaurant)
	assert.Contains(t, reject.Fields["message"], "2026-06-12 o godzinie 19:30")
	assert.Contains(t, reject.Fields["message"], "inna godzina: 20:30?")

	plain := ReservationRejection(res, "  ", domain.LangDutch, restaurant)
	assert.Contains(t, plain.Fields["message"], "alternatief tijdstip")
}
