package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Language string

const (
	LangDutch     Language = "nl"
	LangGreek     Language = "el"
	LangTurkish   Language = "tr"
	LangArabic    Language = "ar"
	LangBulgarian Language = "bg"
	LangPolish    Language = "pl"
)

var Languages = []Language{LangDutch, LangGreek, LangTurkish, LangArabic, LangBulgarian, LangPolish}

func ParseLanguage(s string) (Language, bool) {
	for _, l := range Languages {
		if string(l) == s {
			return l, true
		}
	}
	return LangDutch, false
}

type MenuCategory string

const (
	CategoryMains        MenuCategory = "mains"
	CategoryColdStarters MenuCategory = "starters_cold"
	CategoryWarmStarters MenuCategory = "starters_warm"
	CategorySalads       MenuCategory = "salads"
	CategoryDesserts     MenuCategory = "desserts"
)

func (c MenuCategory) Valid() bool {
	switch c {
	case CategoryMains, CategoryColdStarters, CategoryWarmStarters, CategorySalads, CategoryDesserts:
		return true
	}
	return false
}

type MenuItem struct {
	ID              string              `json:"id"`
	Category        MenuCategory        `json:"category"`
	Price           decimal.Decimal     `json:"price"`
	ImageURL        string              `json:"image_url,omitempty"`
	Names           map[Language]string `json:"names"`
	Descriptions    map[Language]string `json:"descriptions"`
	IsAvailable     bool                `json:"is_available"`
	IsPopular       bool                `json:"is_popular,omitempty"`
	IsNew           bool                `json:"is_new,omitempty"`
	IsVegetarian    bool                `json:"is_vegetarian,omitempty"`
	IsVegan         bool                `json:"is_vegan,omitempty"`
	IsGlutenFree    bool                `json:"is_gluten_free,omitempty"`
	SpicyLevel      int                 `json:"spicy_level"`
	Allergens       []string            `json:"allergens,omitempty"`
	PreparationTime int                 `json:"preparation_time,omitempty"`
	Calories        int                 `json:"calories,omitempty"`
}

// Name falls back to Dutch, then to the id.
func (m MenuItem) Name(lang Language) string {
	if n := m.Names[lang]; n != "" {
		return n
	}
	if n := m.Names[LangDutch]; n != "" {
		return n
	}
	return m.ID
}

// MenuItemPatch carries the fields an admin edit may change. Nil means untouched.
type MenuItemPatch struct {
	Names        map[Language]string `json:"names,omitempty"`
	Descriptions map[Language]string `json:"descriptions,omitempty"`
	Price        *decimal.Decimal    `json:"price,omitempty"`
	Category     *MenuCategory       `json:"category,omitempty"`
	ImageURL     *string             `json:"image_url,omitempty"`
	IsAvailable  *bool               `json:"is_available,omitempty"`
	IsPopular    *bool               `json:"is_popular,omitempty"`
	IsNew        *bool               `json:"is_new,omitempty"`
	IsVegetarian *bool               `json:"is_vegetarian,omitempty"`
	IsVegan      *bool               `json:"is_vegan,omitempty"`
	IsGlutenFree *bool               `json:"is_gluten_free,omitempty"`
	SpicyLevel   *int                `json:"spicy_level,omitempty"`
}

func (p MenuItemPatch) Apply(m MenuItem) MenuItem {
	if p.Names != nil {
		names := make(map[Language]string, len(m.Names))
		for k, v := range m.Names {
			names[k] = v
		}
		for k, v := range p.Names {
			names[k] = v
		}
		m.Names = names
	}
	if p.Descriptions != nil {
		desc := make(map[Language]string, len(m.Descriptions))
		for k, v := range m.Descriptions {
			desc[k] = v
		}
		for k, v := range p.Descriptions {
			desc[k] = v
		}
		m.Descriptions = desc
	}
	if p.Price != nil {
		m.Price = *p.Price
	}
	if p.Category != nil {
		m.Category = *p.Category
	}
	if p.ImageURL != nil {
		m.ImageURL = *p.ImageURL
	}
	if p.IsAvailable != nil {
		m.IsAvailable = *p.IsAvailable
	}
	if p.IsPopular != nil {
		m.IsPopular = *p.IsPopular
	}
	if p.IsNew != nil {
		m.IsNew = *p.IsNew
	}
	if p.IsVegetarian != nil {
		m.IsVegetarian = *p.IsVegetarian
	}
	if p.IsVegan != nil {
		m.IsVegan = *p.IsVegan
	}
	if p.IsGlutenFree != nil {
		m.IsGlutenFree = *p.IsGlutenFree
	}
	if p.SpicyLevel != nil {
		m.SpicyLevel = *p.SpicyLevel
	}
	return m
}

type CartLine struct {
	MenuItemID string `json:"id"`
	Quantity   int    `json:"quantity"`
}

type CustomerInfo struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Notes      string `json:"notes,omitempty"`
}

type PaymentMethod string

const (
	PaymentIDEAL      PaymentMethod = "ideal"
	PaymentCard       PaymentMethod = "card"
	PaymentBancontact PaymentMethod = "bancontact"
	PaymentCash       PaymentMethod = "cash"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentIDEAL, PaymentCard, PaymentBancontact, PaymentCash:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded:
		return true
	}
	return false
}

type PaymentInfo struct {
	Method        PaymentMethod   `json:"method"`
	Status        PaymentStatus   `json:"status"`
	TransactionID string          `json:"transaction_id,omitempty"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
}

type DeliveryType string

const (
	DeliveryTypeDelivery DeliveryType = "delivery"
	DeliveryTypePickup   DeliveryType = "pickup"
)

func (t DeliveryType) Valid() bool {
	return t == DeliveryTypeDelivery || t == DeliveryTypePickup
}

type DeliveryInfo struct {
	Type          DeliveryType    `json:"type"`
	Fee           decimal.Decimal `json:"fee"`
	EstimatedTime string          `json:"estimated_time,omitempty"`
}

type OrderItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type StaffNote struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
}

type Order struct {
	ID                    string          `json:"id"`
	Items                 []OrderItem     `json:"items"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DeliveryFee           decimal.Decimal `json:"delivery_fee"`
	Total                 decimal.Decimal `json:"total"`
	Status                OrderStatus     `json:"status"`
	Payment               PaymentInfo     `json:"payment"`
	Delivery              DeliveryInfo    `json:"delivery"`
	Customer              CustomerInfo    `json:"customer"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
	EstimatedReadyTime    *time.Time      `json:"estimated_ready_time,omitempty"`
	AssignedDriver        string          `json:"assigned_driver,omitempty"`
	StaffNotes            []StaffNote     `json:"staff_notes,omitempty"`
	DeliveryDepartedAt    *time.Time      `json:"delivery_departed_at,omitempty"`
	EstimatedDeliveryTime *time.Time      `json:"estimated_delivery_time,omitempty"`
}

// Qualifies reports whether kitchen staff should see the order at all:
// card and iDEAL orders only count once their payment is confirmed.
func (o Order) Qualifies() bool {
	return o.Payment.Status == PaymentPaid || o.Payment.Method == PaymentCash
}

// Active is true for qualifying orders that still need work.
func (o Order) Active() bool {
	return o.Qualifies() && !o.Status.Terminal()
}

// LocalOrderPrefix marks orders created while the record store was unreachable.
const LocalOrderPrefix = "ORD-"

func IsLocalOrderID(id string) bool {
	return strings.HasPrefix(id, LocalOrderPrefix)
}

type DriverStatus string

const (
	DriverAvailable DriverStatus = "available"
	DriverBusy      DriverStatus = "busy"
	DriverOffline   DriverStatus = "offline"
)

func (s DriverStatus) Valid() bool {
	return s == DriverAvailable || s == DriverBusy || s == DriverOffline
}

type Driver struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	Phone            string       `json:"phone"`
	Status           DriverStatus `json:"status"`
	ActiveDeliveries int          `json:"active_deliveries"`
}

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationRejected  ReservationStatus = "rejected"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationRejected, ReservationCancelled:
		return true
	}
	return false
}

type Reservation struct {
	ID                 string            `json:"id"`
	CustomerName       string            `json:"customer_name"`
	CustomerEmail      string            `json:"customer_email"`
	CustomerPhone      string            `json:"customer_phone"`
	Date               string            `json:"date"`
	Time               string            `json:"time"`
	NumberOfGuests     int               `json:"number_of_guests"`
	SpecialRequests    string            `json:"special_requests,omitempty"`
	Status             ReservationStatus `json:"status"`
	AdminNotes         string            `json:"admin_notes,omitempty"`
	ConfirmationSentAt *time.Time        `json:"confirmation_sent_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

type SiteContent struct {
	Section  string              `json:"section"`
	Key      string              `json:"key"`
	ImageURL string              `json:"image_url,omitempty"`
	Texts    map[Language]string `json:"texts,omitempty"`
}

// Text returns the translation for lang, the Dutch text, or fallback.
func (c SiteContent) Text(lang Language, fallback string) string {
	if t := c.Texts[lang]; t != "" {
		return t
	}
	if t := c.Texts[LangDutch]; t != "" {
		return t
	}
	return fallback
}
