package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"greek-irini/internal/domain"
	"greek-irini/internal/mocks"
	"greek-irini/internal/service"
)

func TestState_Refresh_Sources(t *testing.T) {
	ctx := context.Background()
	stored := []domain.MenuItem{{ID: "loukoumades", Category: domain.CategoryDesserts, Price: money("7.00"), IsAvailable: true}}

	tests := []struct {
		name         string
		prepareMocks func(menu *mocks.MenuRepository)
		expected     string
		menuLen      int
	}{
		{
			name: "from_store",
			prepareMocks: func(menu *mocks.MenuRepository) {
				menu.On("ListMenuItems", mock.Anything).Return(stored, nil).Once()
			},
			expected: "store",
			menuLen:  1,
		},
		{
			name: "store_down_uses_seed",
			prepareMocks: func(menu *mocks.MenuRepository) {
				menu.On("ListMenuItems", mock.Anything).Return(nil, errors.New("dial tcp: refused")).Once()
			},
			expected: "seed",
			menuLen:  len(domain.SeedMenu()),
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			state, _ := newTestState(t)
			menu := mocks.NewMenuRepository(t)
			testCase.prepareMocks(menu)

			report := state.Refresh(ctx, service.Repositories{Menu: menu})
			assert.Equal(t, testCase.expected, report.Sources[domain.EntityMenuItem])
			assert.Equal(t, "seed", report.Sources[domain.EntityDriver])
			assert.Equal(t, "seed", report.Sources[domain.EntitySettings])
			assert.Len(t, state.Menu(), testCase.menuLen)
		})
	}
}

func TestState_Refresh_FallsBackToSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first := service.NewState(store)
	menu := mocks.NewMenuRepository(t)
	menu.On("ListMenuItems", mock.Anything).
		Return([]domain.MenuItem{{ID: "loukoumades", Price: money("7.00"), IsAvailable: true}}, nil).Once()
	first.Refresh(ctx, service.Repositories{Menu: menu})

	second := service.NewState(store)
	report := second.Refresh(ctx, service.Repositories{})
	assert.Equal(t, "snapshot", report.Sources[domain.EntityMenuItem])
	_, ok := second.MenuItem("loukoumades")
	assert.True(t, ok)
}

func TestState_Refresh_KeepsLocalOrders(t *testing.T) {
	ctx := context.Background()
	state, _ := newTestState(t)
	now := time.Now()
	state.PutOrder(cashOrder("ORD-OFFLINE-1", domain.StatusPending, "20.00", now))
	state.PutOrder(cashOrder("0a0a0a0a-dead-4000-8000-000000000001", domain.StatusPending, "20.00", now))

	repo := mocks.NewOrderRepository(t)
	repo.On("ListOrders", mock.Anything).
		Return([]domain.Order{cashOrder("0a0a0a0a-beef-4000-8000-000000000002", domain.StatusReady, "31.00", now)}, nil).Once()

	report := state.Refresh(ctx, service.Repositories{Orders: repo})
	assert.Equal(t, 1, report.LocalOrders)

	_, ok := state.Order("ORD-OFFLINE-1")
	assert.True(t, ok)
	_, ok = state.Order("0a0a0a0a-beef-4000-8000-000000000002")
	assert.True(t, ok)
	_, ok = state.Order("0a0a0a0a-dead-4000-8000-000000000001")
	assert.False(t, ok, "stored orders missing upstream are dropped")
}

func TestState_ApplyEvent(t *testing.T) {
	state, _ := newTestState(t)

	event := func(entity domain.Entity, op domain.ChangeOp, id string, record any) domain.ChangeEvent {
		ev, err := domain.NewChangeEvent(entity, op, id, record)
		require.NoError(t, err)
		ev.Source = "other-instance"
		return ev
	}

	own := event(domain.EntityMenuItem, domain.OpInsert, "revithia", domain.MenuItem{ID: "revithia"})
	own.Source = state.Source()
	state.ApplyEvent(own)
	_, ok := state.MenuItem("revithia")
	assert.False(t, ok, "own events are ignored")

	state.ApplyEvent(event(domain.EntityMenuItem, domain.OpInsert, "revithia", domain.MenuItem{ID: "revithia", Price: money("6.00")}))
	item, ok := state.MenuItem("revithia")
	require.True(t, ok)
	assert.True(t, money("6.00").Equal(item.Price))

	state.ApplyEvent(event(domain.EntityMenuItem, domain.OpDelete, "moussaka", nil))
	_, ok = state.MenuItem("moussaka")
	assert.False(t, ok)

	order := cashOrder("7e57ab1e-0000-4000-8000-000000000003", domain.StatusPreparing, "44.00", time.Now())
	state.ApplyEvent(event(domain.EntityOrder, domain.OpUpdate, order.ID, order))
	got, ok := state.Order(order.ID)
	require.True(t, ok)
	assert.Equal(t, domain.StatusPreparing, got.Status)

	state.ApplyEvent(event(domain.EntityDriver, domain.OpDelete, "DRV-003", nil))
	_, ok = state.Driver("DRV-003")
	assert.False(t, ok)

	zones := state.Settings().DeliveryZones
	zones.Fee = money("1.50")
	raw, err := json.Marshal(zones)
	require.NoError(t, err)
	state.ApplyEvent(domain.ChangeEvent{Entity: domain.EntitySettings, Op: domain.OpUpdate, ID: domain.SettingsDeliveryZones, Record: raw})
	assert.True(t, money("1.50").Equal(state.Settings().DeliveryZones.Fee))

	// undecodable records leave the cache alone
	state.ApplyEvent(domain.ChangeEvent{Entity: domain.EntityOrder, Op: domain.OpUpdate, ID: "x", Record: []byte("{")})
	assert.Len(t, state.Orders(), 1)
}
