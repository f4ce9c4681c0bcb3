package service_test

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"greek-irini/internal/domain"
	"greek-irini/internal/service"
	"greek-irini/internal/storage"
)

func newTestStore(t *testing.T) *storage.RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return storage.NewRedisStore(client, time.Hour)
}

func newTestState(t *testing.T) (*service.State, *storage.RedisStore) {
	t.Helper()
	store := newTestStore(t)
	return service.NewState(store), store
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validCustomer() domain.CustomerInfo {
	return domain.CustomerInfo{
		Name:       "Eleni Papadopoulou",
		Email:      "eleni@example.nl",
		Phone:      "06 1234 5678",
		Address:    "Weimarstraat 10",
		PostalCode: "2562 HD",
		City:       "Den Haag",
	}
}

func cashOrder(id string, status domain.OrderStatus, total string, created time.Time) domain.Order {
	return domain.Order{
		ID:        id,
		Status:    status,
		Total:     money(total),
		Subtotal:  money(total),
		Payment:   domain.PaymentInfo{Method: domain.PaymentCash, Status: domain.PaymentUnpaid, Amount: money(total)},
		Delivery:  domain.DeliveryInfo{Type: domain.DeliveryTypePickup},
		Customer:  domain.CustomerInfo{Name: "Nikos " + id},
		CreatedAt: created,
		UpdatedAt: created,
	}
}
