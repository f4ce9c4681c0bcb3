package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

// OrderDraft is everything checkout collected for a new order.
type OrderDraft struct {
	SessionID string
	Language  domain.Language
	Customer  domain.CustomerInfo
	Quote     Quote
	Payment   domain.PaymentInfo
}

type OrderService struct {
	repo     OrderRepository
	drivers  DriverRepository
	carts    CartStore
	sessions SessionStore
	mailer   Mailer
	qr       QRGenerator
	state    *State
	changes  changes
	strict   bool
	now      func() time.Time
}

type OrderServiceDeps struct {
	Orders    OrderRepository
	Drivers   DriverRepository
	Carts     CartStore
	Sessions  SessionStore
	Mailer    Mailer
	QR        QRGenerator
	Publisher ChangePublisher
	// StrictTransitions limits status changes to one step forward or cancel.
	StrictTransitions bool
}

func NewOrderService(state *State, deps OrderServiceDeps) *OrderService {
	return &OrderService{
		repo:     deps.Orders,
		drivers:  deps.Drivers,
		carts:    deps.Carts,
		sessions: deps.Sessions,
		mailer:   deps.Mailer,
		qr:       deps.QR,
		state:    state,
		changes:  changes{publisher: deps.Publisher, source: state.Source()},
		strict:   deps.StrictTransitions,
		now:      time.Now,
	}
}

// Create persists a new order. When the record store rejects the write the
// order is kept locally under an ORD- id and the customer still gets a
// confirmation.
func (s *OrderService) Create(ctx context.Context, draft OrderDraft) (domain.Order, error) {
	if len(draft.Quote.Lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}
	now := s.now()
	policy := s.state.Settings().Policy()
	minutes := policy.EstimatedMinutes(draft.Quote.DeliveryType)
	ready := now.Add(time.Duration(minutes) * time.Minute)

	payment := draft.Payment
	payment.Amount = draft.Quote.Total
	order := domain.Order{
		Items:       draft.Quote.Items(),
		Subtotal:    draft.Quote.Subtotal,
		DeliveryFee: draft.Quote.DeliveryFee,
		Total:       draft.Quote.Total,
		Status:      domain.StatusPending,
		Payment:     payment,
		Delivery: domain.DeliveryInfo{
			Type:          draft.Quote.DeliveryType,
			Fee:           draft.Quote.DeliveryFee,
			EstimatedTime: strconv.Itoa(minutes) + " min",
		},
		Customer:           draft.Customer,
		CreatedAt:          now,
		UpdatedAt:          now,
		EstimatedReadyTime: &ready,
	}

	logger := log.WithField("session", draft.SessionID)
	if err := s.createRemote(ctx, &order); err != nil {
		order.ID = LocalOrderID(now)
		logger.WithError(err).WithField("order_id", order.ID).Warn("record store unavailable, keeping order locally")
	}
	s.state.PutOrder(order)
	s.state.Persist(ctx, domain.EntityOrder)

	if s.carts != nil && draft.SessionID != "" {
		if err := s.carts.DeleteCart(ctx, draft.SessionID); err != nil {
			logger.WithError(err).Warn("failed to clear cart")
		}
	}
	if s.sessions != nil && draft.SessionID != "" {
		if err := s.sessions.SetCurrentOrder(ctx, draft.SessionID, order.ID); err != nil {
			logger.WithError(err).Warn("failed to record current order")
		}
	}
	if s.mailer != nil && order.Customer.Email != "" {
		res := s.mailer.SendOrderConfirmation(ctx, order, draft.Language)
		entry := logger.WithFields(log.Fields{"order_id": order.ID, "message": res.Message})
		if res.Success {
			entry.Info("order confirmation sent")
		} else {
			entry.Warn("order confirmation not sent")
		}
	}
	s.changes.emit(ctx, domain.EntityOrder, domain.OpInsert, order.ID, order)

	logger.WithFields(log.Fields{
		"order_id": order.ID,
		"total":    order.Total.StringFixed(2),
		"payment":  order.Payment.Method,
	}).Info("order created")
	return order, nil
}

func (s *OrderService) createRemote(ctx context.Context, order *domain.Order) error {
	if s.repo == nil {
		return errNoRepository
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return err
	}
	if order.ID == "" {
		return errors.New("record store returned no order id")
	}
	return nil
}

// LocalOrderID builds ORD-<base36 millis>-<4 chars>.
func LocalOrderID(now time.Time) string {
	stamp := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:4])
	return domain.LocalOrderPrefix + stamp + "-" + suffix
}

func (s *OrderService) Get(ctx context.Context, id string) (domain.Order, error) {
	if o, ok := s.state.Order(id); ok {
		return o, nil
	}
	if s.repo == nil || domain.IsLocalOrderID(id) {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	o, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("failed to load order %s: %w", id, err)
	}
	if o == nil {
		return domain.Order{}, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	s.state.PutOrder(*o)
	return *o, nil
}

type OrderView string

const (
	ViewActive  OrderView = "active"
	ViewHistory OrderView = "history"
	ViewAll     OrderView = "all"
)

type OrderQuery struct {
	View   OrderView
	Search string
	Status domain.OrderStatus
	SortBy string
	Asc    bool
}

// FilterOrders selects and sorts orders for the admin console. The active
// and history views only show qualifying orders; ViewAll shows everything.
func FilterOrders(orders []domain.Order, q OrderQuery) []domain.Order {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		switch q.View {
		case ViewAll:
		case ViewHistory:
			if !o.Qualifies() || !o.Status.Terminal() {
				continue
			}
		default:
			if !o.Active() {
				continue
			}
		}
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.Customer.Name), search) &&
			!strings.Contains(strings.ToLower(o.ID), search) {
			continue
		}
		out = append(out, o)
	}
	less := func(a, b domain.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
	if q.SortBy == "amount" {
		less = func(a, b domain.Order) bool { return a.Total.LessThan(b.Total) }
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.Asc {
			return less(out[i], out[j])
		}
		return less(out[j], out[i])
	})
	return out
}

func (s *OrderService) List(q OrderQuery) []domain.Order {
	return FilterOrders(s.state.Orders(), q)
}

func (s *OrderService) Active() []domain.Order {
	return s.List(OrderQuery{View: ViewActive})
}

func (s *OrderService) History() []domain.Order {
	return s.List(OrderQuery{View: ViewHistory})
}

func (s *OrderService) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error) {
	o, driver, err := s.state.SetOrderStatus(id, status, s.strict)
	if err != nil {
		return domain.Order{}, err
	}
	s.afterStatus(ctx, o, driver)
	return o, nil
}

// CompleteIfOpen completes an order unless it is already closed. It reports
// whether the status changed.
func (s *OrderService) CompleteIfOpen(ctx context.Context, id string) (domain.Order, bool, error) {
	o, driver, changed, err := s.state.CompleteOpenOrder(id)
	if err != nil || !changed {
		return o, false, err
	}
	s.afterStatus(ctx, o, driver)
	return o, true, nil
}

func (s *OrderService) afterStatus(ctx context.Context, o domain.Order, driver *domain.Driver) {
	if s.writable(o.ID) {
		if err := s.repo.UpdateStatus(ctx, o.ID, o.Status, o.UpdatedAt); err != nil {
			log.WithError(err).WithField("order_id", o.ID).Error("failed to store order status")
		}
	}
	if driver != nil {
		s.storeDriver(ctx, *driver)
	}
	s.changed(ctx, o)
	log.WithFields(log.Fields{"order_id": o.ID, "status": o.Status}).Info("order status updated")
}

func (s *OrderService) UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (domain.Order, error) {
	if !status.Valid() {
		return domain.Order{}, fmt.Errorf("payment %q: %w", status, ErrInvalidStatus)
	}
	now := s.now()
	o, err := s.state.UpdateOrder(id, func(o *domain.Order) error {
		o.Payment.Status = status
		if status == domain.PaymentPaid && o.Payment.PaidAt == nil {
			o.Payment.PaidAt = &now
		}
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	if s.writable(id) {
		if err := s.repo.UpdatePaymentStatus(ctx, id, o.Payment, o.UpdatedAt); err != nil {
			log.WithError(err).WithField("order_id", id).Error("failed to store payment status")
		}
	}
	s.changed(ctx, o)
	return o, nil
}

func (s *OrderService) AddStaffNote(ctx context.Context, id, text, author string) (domain.Order, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Order{}, fmt.Errorf("empty note: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(author) == "" {
		author = "staff"
	}
	note := domain.StaffNote{ID: uuid.NewString(), Text: text, Author: author, Timestamp: s.now()}
	o, err := s.state.UpdateOrder(id, func(o *domain.Order) error {
		o.StaffNotes = append(append([]domain.StaffNote(nil), o.StaffNotes...), note)
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	if s.writable(id) {
		if err := s.repo.AddStaffNote(ctx, id, note); err != nil {
			log.WithError(err).WithField("order_id", id).Error("failed to store staff note")
		}
	}
	s.changed(ctx, o)
	return o, nil
}

// AssignDriver hands the order to driverID, or unassigns it when driverID is
// empty. Driver counters move with the assignment.
func (s *OrderService) AssignDriver(ctx context.Context, id, driverID string) (domain.Order, error) {
	o, touched, err := s.state.AssignDriver(id, driverID)
	if err != nil {
		return domain.Order{}, err
	}
	if len(touched) == 0 {
		return o, nil
	}
	if s.writable(id) {
		if err := s.repo.AssignDriver(ctx, id, driverID, o.UpdatedAt); err != nil {
			log.WithError(err).WithField("order_id", id).Error("failed to store driver assignment")
		}
	}
	for _, d := range touched {
		s.storeDriver(ctx, d)
	}
	s.changed(ctx, o)
	log.WithFields(log.Fields{"order_id": id, "driver": driverID}).Info("driver assigned")
	return o, nil
}

// StartDelivery sends the order out: status delivery, departure now and an
// ETA minutes from now.
func (s *OrderService) StartDelivery(ctx context.Context, id string, minutes int) (domain.Order, error) {
	if minutes <= 0 {
		return domain.Order{}, fmt.Errorf("delivery minutes %d: %w", minutes, ErrInvalidInput)
	}
	now := s.now()
	eta := now.Add(time.Duration(minutes) * time.Minute)
	o, err := s.state.UpdateOrder(id, func(o *domain.Order) error {
		if s.strict && o.Status != domain.StatusDelivery && !domain.NextAllowed(o.Status, domain.StatusDelivery) {
			return fmt.Errorf("%s -> %s: %w", o.Status, domain.StatusDelivery, ErrInvalidTransition)
		}
		o.Status = domain.StatusDelivery
		o.DeliveryDepartedAt = &now
		o.EstimatedDeliveryTime = &eta
		return nil
	})
	if err != nil {
		return domain.Order{}, err
	}
	if s.writable(id) {
		if err := s.repo.StartDelivery(ctx, id, now, eta); err != nil {
			log.WithError(err).WithField("order_id", id).Error("failed to store delivery start")
		}
	}
	s.changed(ctx, o)
	return o, nil
}

func (s *OrderService) QRCode(id string) ([]byte, error) {
	if _, ok := s.state.Order(id); !ok {
		return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	if s.qr == nil {
		return nil, errors.New("qr generator not configured")
	}
	return s.qr.Generate(id)
}

// writable is false for orders the record store has never seen.
func (s *OrderService) writable(id string) bool {
	return s.repo != nil && !domain.IsLocalOrderID(id)
}

func (s *OrderService) changed(ctx context.Context, o domain.Order) {
	s.state.Persist(ctx, domain.EntityOrder)
	s.changes.emit(ctx, domain.EntityOrder, domain.OpUpdate, o.ID, o)
}

func (s *OrderService) storeDriver(ctx context.Context, d domain.Driver) {
	if s.drivers != nil {
		if err := s.drivers.UpsertDriver(ctx, &d); err != nil {
			log.WithError(err).WithField("driver", d.ID).Error("failed to store driver")
		}
	}
	s.state.Persist(ctx, domain.EntityDriver)
	s.changes.emit(ctx, domain.EntityDriver, domain.OpUpdate, d.ID, d)
}

var _ OrderServiceInterface = (*OrderService)(nil)
