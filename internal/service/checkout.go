package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type CheckoutStep string

const (
	StepDetails      CheckoutStep = "details"
	StepPayment      CheckoutStep = "payment"
	StepProcessing   CheckoutStep = "processing"
	StepOrderCreated CheckoutStep = "order_created"
)

// CheckoutView is what the site renders for the current wizard step.
type CheckoutView struct {
	SessionID     string               `json:"session_id"`
	Step          CheckoutStep         `json:"step"`
	DeliveryType  domain.DeliveryType  `json:"delivery_type"`
	Customer      domain.CustomerInfo  `json:"customer"`
	FieldErrors   map[string]string    `json:"field_errors,omitempty"`
	PaymentMethod domain.PaymentMethod `json:"payment_method,omitempty"`
	Quote         Quote                `json:"quote"`
	BelowMinimum  bool                 `json:"below_minimum"`
	Error         string               `json:"error,omitempty"`
	Order         *domain.Order        `json:"order,omitempty"`
}

type OrderCreator interface {
	Create(ctx context.Context, draft OrderDraft) (domain.Order, error)
}

type checkoutSession struct {
	step         CheckoutStep
	deliveryType domain.DeliveryType
	customer     domain.CustomerInfo
	touched      map[string]bool
	fieldErrors  FieldErrors
	method       domain.PaymentMethod
	lastErr      error
	order        *domain.Order
	seen         time.Time
}

func newCheckoutSession(now time.Time) *checkoutSession {
	return &checkoutSession{
		step:         StepDetails,
		deliveryType: domain.DeliveryTypeDelivery,
		touched:      make(map[string]bool),
		fieldErrors:  FieldErrors{},
		seen:         now,
	}
}

// snapshot copies what view needs so it can run without the lock.
func (cs *checkoutSession) snapshot() checkoutSession {
	c := *cs
	c.touched = nil
	c.fieldErrors = make(FieldErrors, len(cs.fieldErrors))
	for k, v := range cs.fieldErrors {
		c.fieldErrors[k] = v
	}
	return c
}

// CheckoutService runs one wizard per browsing session. The wizard lives in
// memory only; carts and language come from the session stores.
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[string]*checkoutSession

	carts    CartStore
	prefs    SessionStore
	orders   OrderCreator
	payments PaymentSimulator
	state    *State
	idle     time.Duration
	now      func() time.Time
}

// DefaultCheckoutIdle is how long an untouched wizard is kept.
const DefaultCheckoutIdle = 2 * time.Hour

func NewCheckoutService(state *State, carts CartStore, prefs SessionStore, orders OrderCreator, payments PaymentSimulator) *CheckoutService {
	return &CheckoutService{
		sessions: make(map[string]*checkoutSession),
		carts:    carts,
		prefs:    prefs,
		orders:   orders,
		payments: payments,
		state:    state,
		idle:     DefaultCheckoutIdle,
		now:      time.Now,
	}
}

// session returns the wizard for sessionID, creating it when needed. Callers
// hold s.mu.
func (s *CheckoutService) session(sessionID string) *checkoutSession {
	now := s.now()
	for id, cs := range s.sessions {
		if cs.step != StepProcessing && now.Sub(cs.seen) > s.idle {
			delete(s.sessions, id)
		}
	}
	cs, ok := s.sessions[sessionID]
	if !ok {
		cs = newCheckoutSession(now)
		s.sessions[sessionID] = cs
	}
	cs.seen = now
	return cs
}

// editable returns a wizard that accepts detail edits. A finished checkout
// starts over.
func (s *CheckoutService) editable(sessionID string) (*checkoutSession, error) {
	cs := s.session(sessionID)
	switch cs.step {
	case StepProcessing:
		return nil, ErrCheckoutBusy
	case StepOrderCreated:
		cs = newCheckoutSession(s.now())
		s.sessions[sessionID] = cs
	case StepPayment:
		return nil, fmt.Errorf("go back to details first: %w", ErrInvalidStep)
	}
	return cs, nil
}

func (s *CheckoutService) View(ctx context.Context, sessionID string) (CheckoutView, error) {
	s.mu.Lock()
	cs := s.session(sessionID)
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), nil
}

func (s *CheckoutService) SetDeliveryType(ctx context.Context, sessionID string, t domain.DeliveryType) (CheckoutView, error) {
	if !t.Valid() {
		return s.current(ctx, sessionID), fmt.Errorf("delivery type %q: %w", t, ErrInvalidInput)
	}
	s.mu.Lock()
	cs, err := s.editable(sessionID)
	if err != nil {
		s.mu.Unlock()
		return s.current(ctx, sessionID), err
	}
	cs.deliveryType = t
	s.revalidateTouched(cs)
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), nil
}

// TouchField records a field the customer just left and validates it alone.
func (s *CheckoutService) TouchField(ctx context.Context, sessionID, field string, c domain.CustomerInfo) (CheckoutView, error) {
	s.mu.Lock()
	cs, err := s.editable(sessionID)
	if err != nil {
		s.mu.Unlock()
		return s.current(ctx, sessionID), err
	}
	cs.customer = c
	cs.touched[field] = true
	s.revalidateTouched(cs)
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), nil
}

func (s *CheckoutService) revalidateTouched(cs *checkoutSession) {
	policy := s.state.Settings().Policy()
	errs := FieldErrors{}
	for field := range cs.touched {
		if err := ValidateField(field, cs.customer, cs.deliveryType, policy); err != nil {
			errs[field] = err
		}
	}
	cs.fieldErrors = errs
}

// SubmitDetails leaves the details step. The minimum order is checked before
// any field, and every required field is validated.
func (s *CheckoutService) SubmitDetails(ctx context.Context, sessionID string, c domain.CustomerInfo) (CheckoutView, error) {
	lines, err := s.cart(ctx, sessionID)
	if err != nil {
		return s.current(ctx, sessionID), err
	}
	settings := s.state.Settings()
	policy := settings.Policy()

	s.mu.Lock()
	cs, err := s.editable(sessionID)
	if err != nil {
		s.mu.Unlock()
		return s.current(ctx, sessionID), err
	}
	cs.customer = c
	cs.lastErr = nil
	quote := PriceCart(lines, s.state.MenuItem, cs.deliveryType, policy, domain.LangDutch)
	switch {
	case len(quote.Lines) == 0:
		err = ErrEmptyCart
	case quote.BelowMinimum():
		err = fmt.Errorf("%s more needed: %w", quote.Remaining().StringFixed(2), ErrBelowMinimumOrder)
	default:
		for _, field := range RequiredFields(cs.deliveryType) {
			cs.touched[field] = true
		}
		err = ValidateCustomer(c, cs.deliveryType, policy)
		cs.fieldErrors, _ = IsValidation(err)
		if cs.fieldErrors == nil {
			cs.fieldErrors = FieldErrors{}
		}
	}
	if err != nil {
		cs.lastErr = err
	} else {
		cs.step = StepPayment
		if !cs.method.Valid() || !settings.Payments.Enabled(cs.method) {
			cs.method = defaultMethod(settings.Payments)
		}
	}
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), err
}

func defaultMethod(p domain.PaymentSettings) domain.PaymentMethod {
	for _, m := range []domain.PaymentMethod{domain.PaymentIDEAL, domain.PaymentCard, domain.PaymentBancontact, domain.PaymentCash} {
		if p.Enabled(m) {
			return m
		}
	}
	return ""
}

func (s *CheckoutService) SetPaymentMethod(ctx context.Context, sessionID string, m domain.PaymentMethod) (CheckoutView, error) {
	if !m.Valid() {
		return s.current(ctx, sessionID), fmt.Errorf("payment method %q: %w", m, ErrInvalidInput)
	}
	if !s.state.Settings().Payments.Enabled(m) {
		return s.current(ctx, sessionID), fmt.Errorf("%s: %w", m, ErrPaymentMethodUnavailable)
	}
	s.mu.Lock()
	cs := s.session(sessionID)
	switch cs.step {
	case StepProcessing:
		s.mu.Unlock()
		return s.current(ctx, sessionID), ErrCheckoutBusy
	case StepPayment:
	default:
		s.mu.Unlock()
		return s.current(ctx, sessionID), fmt.Errorf("payment method outside payment step: %w", ErrInvalidStep)
	}
	cs.method = m
	cs.lastErr = nil
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), nil
}

func (s *CheckoutService) Back(ctx context.Context, sessionID string) (CheckoutView, error) {
	s.mu.Lock()
	cs := s.session(sessionID)
	switch cs.step {
	case StepProcessing:
		s.mu.Unlock()
		return s.current(ctx, sessionID), ErrCheckoutBusy
	case StepPayment:
		cs.step = StepDetails
		cs.lastErr = nil
	default:
		s.mu.Unlock()
		return s.current(ctx, sessionID), fmt.Errorf("no previous step: %w", ErrInvalidStep)
	}
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot), nil
}

// Confirm pays and places the order. While it runs every other wizard call
// for the session gets ErrCheckoutBusy. A failed payment goes back to the
// payment step with the cart untouched.
func (s *CheckoutService) Confirm(ctx context.Context, sessionID string) (CheckoutView, error) {
	lines, err := s.cart(ctx, sessionID)
	if err != nil {
		return s.current(ctx, sessionID), err
	}
	settings := s.state.Settings()
	lang := s.language(ctx, sessionID)

	s.mu.Lock()
	cs := s.session(sessionID)
	switch cs.step {
	case StepProcessing:
		s.mu.Unlock()
		return s.current(ctx, sessionID), ErrCheckoutBusy
	case StepPayment:
	default:
		s.mu.Unlock()
		return s.current(ctx, sessionID), fmt.Errorf("confirm outside payment step: %w", ErrInvalidStep)
	}
	if !cs.method.Valid() || !settings.Payments.Enabled(cs.method) {
		s.mu.Unlock()
		return s.current(ctx, sessionID), fmt.Errorf("%q: %w", cs.method, ErrPaymentMethodUnavailable)
	}
	quote := PriceCart(lines, s.state.MenuItem, cs.deliveryType, settings.Policy(), lang)
	if len(quote.Lines) == 0 || quote.BelowMinimum() {
		cs.step = StepDetails
		cs.lastErr = ErrBelowMinimumOrder
		if len(quote.Lines) == 0 {
			cs.lastErr = ErrEmptyCart
		}
		err := cs.lastErr
		snapshot := cs.snapshot()
		s.mu.Unlock()
		return s.view(ctx, sessionID, &snapshot), err
	}
	cs.step = StepProcessing
	cs.lastErr = nil
	method, customer := cs.method, cs.customer
	s.mu.Unlock()

	logger := log.WithFields(log.Fields{"session": sessionID, "method": method})
	payment := domain.PaymentInfo{Method: method, Status: domain.PaymentUnpaid}
	if method != domain.PaymentCash {
		res, err := s.payments.Charge(ctx, PaymentRequest{OrderRef: sessionID, Method: method, Amount: quote.Total})
		if err == nil && !res.Success {
			err = ErrPaymentFailed
		} else if err != nil {
			err = fmt.Errorf("%w: %v", ErrPaymentFailed, err)
		}
		if err != nil {
			logger.WithError(err).Info("simulated payment failed")
			return s.settle(ctx, sessionID, func(cs *checkoutSession) {
				cs.step = StepPayment
				cs.lastErr = err
			}), err
		}
		paidAt := res.PaidAt
		payment.Status = domain.PaymentPaid
		payment.TransactionID = res.TransactionID
		payment.PaidAt = &paidAt
	}

	// the order write must not be cut short by the customer going away
	order, err := s.orders.Create(context.WithoutCancel(ctx), OrderDraft{
		SessionID: sessionID,
		Language:  lang,
		Customer:  customer,
		Quote:     quote,
		Payment:   payment,
	})
	if err != nil {
		logger.WithError(err).Error("order creation failed")
		return s.settle(ctx, sessionID, func(cs *checkoutSession) {
			cs.step = StepPayment
			cs.lastErr = err
		}), err
	}
	return s.settle(ctx, sessionID, func(cs *checkoutSession) {
		cs.step = StepOrderCreated
		cs.order = &order
	}), nil
}

func (s *CheckoutService) settle(ctx context.Context, sessionID string, fn func(cs *checkoutSession)) CheckoutView {
	s.mu.Lock()
	cs := s.session(sessionID)
	fn(cs)
	snapshot := cs.snapshot()
	s.mu.Unlock()
	return s.view(ctx, sessionID, &snapshot)
}

func (s *CheckoutService) current(ctx context.Context, sessionID string) CheckoutView {
	v, _ := s.View(ctx, sessionID)
	return v
}

func (s *CheckoutService) cart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	lines, err := s.carts.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}
	return lines, nil
}

func (s *CheckoutService) language(ctx context.Context, sessionID string) domain.Language {
	if s.prefs == nil {
		return domain.LangDutch
	}
	lang, err := s.prefs.Language(ctx, sessionID)
	if err != nil {
		return domain.LangDutch
	}
	return lang
}

func (s *CheckoutService) view(ctx context.Context, sessionID string, cs *checkoutSession) CheckoutView {
	v := CheckoutView{
		SessionID:     sessionID,
		Step:          cs.step,
		DeliveryType:  cs.deliveryType,
		Customer:      cs.customer,
		PaymentMethod: cs.method,
		Order:         cs.order,
	}
	if len(cs.fieldErrors) > 0 {
		v.FieldErrors = cs.fieldErrors.Messages()
	}
	if cs.lastErr != nil {
		v.Error = cs.lastErr.Error()
	}
	if cs.step == StepOrderCreated && cs.order != nil {
		return v
	}
	lines, err := s.carts.LoadCart(ctx, sessionID)
	if err != nil {
		log.WithError(err).WithField("session", sessionID).Warn("failed to load cart for checkout view")
	}
	v.Quote = PriceCart(lines, s.state.MenuItem, cs.deliveryType, s.state.Settings().Policy(), s.language(ctx, sessionID))
	v.BelowMinimum = v.Quote.BelowMinimum()
	return v
}

var _ CheckoutServiceInterface = (*CheckoutService)(nil)
