package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"greek-irini/internal/domain"
	"greek-irini/internal/notify"
)

type MenuRepository interface {
	ListMenuItems(ctx context.Context) ([]domain.MenuItem, error)
	UpsertMenuItem(ctx context.Context, item *domain.MenuItem) error
	DeleteMenuItem(ctx context.Context, id string) (int64, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	ListOrders(ctx context.Context) ([]domain.Order, error)
	GetOrder(ctx context.Context, id string) (*domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error
	UpdatePaymentStatus(ctx context.Context, id string, payment domain.PaymentInfo, at time.Time) error
	AddStaffNote(ctx context.Context, orderID string, note domain.StaffNote) error
	AssignDriver(ctx context.Context, orderID, driverID string, at time.Time) error
	StartDelivery(ctx context.Context, orderID string, departedAt, eta time.Time) error
}

type DriverRepository interface {
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
	UpsertDriver(ctx context.Context, d *domain.Driver) error
	DeleteDriver(ctx context.Context, id string) (int64, error)
}

type ReservationRepository interface {
	CreateReservation(ctx context.Context, r *domain.Reservation) error
	ListReservations(ctx context.Context) ([]domain.Reservation, error)
	UpdateReservation(ctx context.Context, r *domain.Reservation) error
}

type SettingsRepository interface {
	LoadSettings(ctx context.Context) (map[string]json.RawMessage, error)
	SaveSettingsGroup(ctx context.Context, group string, value any) error
}

type ContentRepository interface {
	ListContent(ctx context.Context) ([]domain.SiteContent, error)
	UpsertContent(ctx context.Context, c *domain.SiteContent) error
}

// Repositories bundles the record store by entity. A single Postgres store
// usually fills every field.
type Repositories struct {
	Menu         MenuRepository
	Orders       OrderRepository
	Drivers      DriverRepository
	Reservations ReservationRepository
	Settings     SettingsRepository
	Content      ContentRepository
}

type ChangePublisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

type ChangeSubscriber interface {
	Subscribe(handler func(domain.ChangeEvent)) uuid.UUID
	Unsubscribe(handle uuid.UUID)
}

type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, entity domain.Entity, v any) error
	LoadSnapshot(ctx context.Context, entity domain.Entity, dst any) (bool, error)
}

type CartStore interface {
	LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error
	DeleteCart(ctx context.Context, sessionID string) error
}

type SessionStore interface {
	Language(ctx context.Context, sessionID string) (domain.Language, error)
	SetLanguage(ctx context.Context, sessionID string, lang domain.Language) error
	CurrentOrder(ctx context.Context, sessionID string) (string, error)
	SetCurrentOrder(ctx context.Context, sessionID, orderID string) error
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, order domain.Order, lang domain.Language) notify.Result
	SendReservationConfirmation(ctx context.Context, r domain.Reservation, notes string, lang domain.Language) notify.Result
	SendReservationRejection(ctx context.Context, r domain.Reservation, alternative string, lang domain.Language) notify.Result
}

type PaymentRequest struct {
	OrderRef string
	Method   domain.PaymentMethod
	Amount   decimal.Decimal
}

type PaymentResult struct {
	Success       bool
	TransactionID string
	PaidAt        time.Time
}

type PaymentSimulator interface {
	Charge(ctx context.Context, req PaymentRequest) (PaymentResult, error)
}

type QRGenerator interface {
	Generate(orderID string) ([]byte, error)
}

type CartServiceInterface interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Add(ctx context.Context, sessionID, itemID string, quantity int) ([]domain.CartLine, error)
	Update(ctx context.Context, sessionID, itemID string, delta int) ([]domain.CartLine, error)
	Remove(ctx context.Context, sessionID, itemID string) ([]domain.CartLine, error)
	Clear(ctx context.Context, sessionID string) error
	Quote(ctx context.Context, sessionID string, t domain.DeliveryType) (Quote, error)
}

type CheckoutServiceInterface interface {
	View(ctx context.Context, sessionID string) (CheckoutView, error)
	SetDeliveryType(ctx context.Context, sessionID string, t domain.DeliveryType) (CheckoutView, error)
	TouchField(ctx context.Context, sessionID, field string, c domain.CustomerInfo) (CheckoutView, error)
	SubmitDetails(ctx context.Context, sessionID string, c domain.CustomerInfo) (CheckoutView, error)
	SetPaymentMethod(ctx context.Context, sessionID string, m domain.PaymentMethod) (CheckoutView, error)
	Back(ctx context.Context, sessionID string) (CheckoutView, error)
	Confirm(ctx context.Context, sessionID string) (CheckoutView, error)
}

type OrderServiceInterface interface {
	Create(ctx context.Context, draft OrderDraft) (domain.Order, error)
	Get(ctx context.Context, id string) (domain.Order, error)
	List(q OrderQuery) []domain.Order
	Active() []domain.Order
	History() []domain.Order
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status domain.PaymentStatus) (domain.Order, error)
	AddStaffNote(ctx context.Context, id, text, author string) (domain.Order, error)
	AssignDriver(ctx context.Context, id, driverID string) (domain.Order, error)
	StartDelivery(ctx context.Context, id string, minutes int) (domain.Order, error)
	QRCode(id string) ([]byte, error)
}

type MenuServiceInterface interface {
	List(category domain.MenuCategory, all bool) []domain.MenuItem
	Get(id string) (domain.MenuItem, error)
	Create(ctx context.Context, item domain.MenuItem) (domain.MenuItem, error)
	Update(ctx context.Context, id string, patch domain.MenuItemPatch) (domain.MenuItem, error)
	ToggleAvailability(ctx context.Context, id string) (domain.MenuItem, error)
	Delete(ctx context.Context, id string) error
}

type DriverServiceInterface interface {
	List() []domain.Driver
	Available() []domain.Driver
	Create(ctx context.Context, d domain.Driver) (domain.Driver, error)
	SetStatus(ctx context.Context, id string, status domain.DriverStatus) (domain.Driver, error)
	Delete(ctx context.Context, id string) error
}

type SettingsServiceInterface interface {
	Get() domain.RestaurantSettings
	Update(ctx context.Context, patch domain.SettingsPatch) (domain.RestaurantSettings, error)
	Reset(ctx context.Context) domain.RestaurantSettings
}

type ReservationServiceInterface interface {
	Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error)
	List(status domain.ReservationStatus) []domain.Reservation
	SetStatus(ctx context.Context, id string, status domain.ReservationStatus) (domain.Reservation, error)
	SetNotes(ctx context.Context, id, notes string) (domain.Reservation, error)
	Confirm(ctx context.Context, id, notes string, lang domain.Language) (domain.Reservation, notify.Result, error)
	Reject(ctx context.Context, id, alternative string, lang domain.Language) (domain.Reservation, notify.Result, error)
}

type ContentServiceInterface interface {
	List(section string) []domain.SiteContent
	Put(ctx context.Context, c domain.SiteContent) (domain.SiteContent, error)
}

type AnalyticsServiceInterface interface {
	Report(p Period) AnalyticsReport
	Export(p Period) ([]byte, error)
}

type ReceiptPrinterInterface interface {
	Start(orderID string) PrintJob
	Cancel(jobID string) (PrintJob, error)
	Job(jobID string) (PrintJob, error)
}
