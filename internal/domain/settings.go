package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Settings groups as they are stored, one record each.
const (
	SettingsGeneral       = "general"
	SettingsDeliveryZones = "delivery_zones"
	SettingsOpeningHours  = "opening_hours"
	SettingsNotifications = "notifications"
	SettingsPayments      = "payments"
)

type GeneralSettings struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
}

type OpeningHours struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

type DeliveryZones struct {
	PostalCodes []string        `json:"postal_codes"`
	Fee         decimal.Decimal `json:"fee"`
	MinOrder    decimal.Decimal `json:"min_order"`
	FreeFrom    decimal.Decimal `json:"free_from"`
}

type NotificationSettings struct {
	SoundEnabled bool   `json:"sound_enabled"`
	EmailEnabled bool   `json:"email_enabled"`
	EmailAddress string `json:"email_address"`
}

type PaymentSettings struct {
	IDEAL      bool `json:"ideal"`
	Card       bool `json:"card"`
	Cash       bool `json:"cash"`
	Bancontact bool `json:"bancontact"`
}

func (p PaymentSettings) Enabled(m PaymentMethod) bool {
	switch m {
	case PaymentIDEAL:
		return p.IDEAL
	case PaymentCard:
		return p.Card
	case PaymentCash:
		return p.Cash
	case PaymentBancontact:
		return p.Bancontact
	}
	return false
}

type RestaurantSettings struct {
	GeneralSettings
	OpeningHours  map[string]OpeningHours `json:"opening_hours"`
	DeliveryZones DeliveryZones           `json:"delivery_zones"`
	Notifications NotificationSettings    `json:"notifications"`
	Payments      PaymentSettings         `json:"payments"`
}

// SettingsPatch carries one optional value per stored group.
type SettingsPatch struct {
	General       *GeneralSettings        `json:"general,omitempty"`
	OpeningHours  map[string]OpeningHours `json:"opening_hours,omitempty"`
	DeliveryZones *DeliveryZones          `json:"delivery_zones,omitempty"`
	Notifications *NotificationSettings   `json:"notifications,omitempty"`
	Payments      *PaymentSettings        `json:"payments,omitempty"`
}

func (p SettingsPatch) Apply(s RestaurantSettings) RestaurantSettings {
	if p.General != nil {
		s.GeneralSettings = *p.General
	}
	if p.OpeningHours != nil {
		s.OpeningHours = p.OpeningHours
	}
	if p.DeliveryZones != nil {
		s.DeliveryZones = *p.DeliveryZones
	}
	if p.Notifications != nil {
		s.Notifications = *p.Notifications
	}
	if p.Payments != nil {
		s.Payments = *p.Payments
	}
	return s
}

var SettingsGroups = []string{SettingsGeneral, SettingsDeliveryZones, SettingsOpeningHours, SettingsNotifications, SettingsPayments}

// Group returns the stored value of one settings group.
func (s RestaurantSettings) Group(name string) (any, error) {
	switch name {
	case SettingsGeneral:
		return s.GeneralSettings, nil
	case SettingsDeliveryZones:
		return s.DeliveryZones, nil
	case SettingsOpeningHours:
		return s.OpeningHours, nil
	case SettingsNotifications:
		return s.Notifications, nil
	case SettingsPayments:
		return s.Payments, nil
	}
	return nil, fmt.Errorf("unknown settings group %q", name)
}

// ApplyGroup decodes a stored group value over the current settings. Values
// are decoded fresh so copies handed out earlier are not touched.
func (s *RestaurantSettings) ApplyGroup(name string, raw []byte) error {
	switch name {
	case SettingsGeneral:
		var v GeneralSettings
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.GeneralSettings = v
	case SettingsDeliveryZones:
		var v DeliveryZones
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.DeliveryZones = v
	case SettingsOpeningHours:
		var v map[string]OpeningHours
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.OpeningHours = v
	case SettingsNotifications:
		var v NotificationSettings
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Notifications = v
	case SettingsPayments:
		var v PaymentSettings
		if err := json.Unmarshal(raw, &v); err != nil {
			return err
		}
		s.Payments = v
	default:
		return fmt.Errorf("unknown settings group %q", name)
	}
	return nil
}

// Groups lists the groups a patch touches, in storage order.
func (p SettingsPatch) Groups() []string {
	var groups []string
	if p.General != nil {
		groups = append(groups, SettingsGeneral)
	}
	if p.DeliveryZones != nil {
		groups = append(groups, SettingsDeliveryZones)
	}
	if p.OpeningHours != nil {
		groups = append(groups, SettingsOpeningHours)
	}
	if p.Notifications != nil {
		groups = append(groups, SettingsNotifications)
	}
	if p.Payments != nil {
		groups = append(groups, SettingsPayments)
	}
	return groups
}

const (
	EstimatedDeliveryMinutes = 45
	EstimatedPickupMinutes   = 25
)

// DeliveryPolicy is the pricing and coverage view of the settings.
type DeliveryPolicy struct {
	MinOrder        decimal.Decimal
	Fee             decimal.Decimal
	FreeFrom        decimal.Decimal
	PostalPrefixes  map[string]struct{}
	DeliveryMinutes int
	PickupMinutes   int
}

func (s RestaurantSettings) Policy() DeliveryPolicy {
	prefixes := make(map[string]struct{}, len(s.DeliveryZones.PostalCodes))
	for _, code := range s.DeliveryZones.PostalCodes {
		prefixes[code] = struct{}{}
	}
	return DeliveryPolicy{
		MinOrder:        s.DeliveryZones.MinOrder,
		Fee:             s.DeliveryZones.Fee,
		FreeFrom:        s.DeliveryZones.FreeFrom,
		PostalPrefixes:  prefixes,
		DeliveryMinutes: EstimatedDeliveryMinutes,
		PickupMinutes:   EstimatedPickupMinutes,
	}
}

// Serves checks the 4-digit prefix of a Dutch postal code such as "2562 HD".
func (p DeliveryPolicy) Serves(postalCode string) bool {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(postalCode), ""))
	if len(cleaned) < 4 {
		return false
	}
	_, ok := p.PostalPrefixes[cleaned[:4]]
	return ok
}

func (p DeliveryPolicy) DeliveryFee(t DeliveryType, subtotal decimal.Decimal) decimal.Decimal {
	if t == DeliveryTypePickup || subtotal.GreaterThanOrEqual(p.FreeFrom) {
		return decimal.Zero
	}
	return p.Fee
}

func (p DeliveryPolicy) EstimatedMinutes(t DeliveryType) int {
	if t == DeliveryTypePickup {
		return p.PickupMinutes
	}
	return p.DeliveryMinutes
}

// DenHaagPostalCodes is the coverage area served out of the box.
var DenHaagPostalCodes = func() []string {
	codes := []string{"2491", "2492", "2493", "2494", "2495", "2496", "2497"}
	for n := 2500; n <= 2597; n++ {
		codes = append(codes, strconv.Itoa(n))
	}
	return codes
}()

func DefaultSettings() RestaurantSettings {
	weekday := OpeningHours{Open: "12:00", Close: "22:00"}
	late := OpeningHours{Open: "12:00", Close: "00:00"}
	return RestaurantSettings{
		GeneralSettings: GeneralSettings{
			Name:       "Greek Irini",
			Address:    "Weimarstraat 174",
			PostalCode: "2562 HD",
			City:       "Den Haag",
			Phone:      "0615869325",
			Email:      "irini070dh@gmail.com",
		},
		OpeningHours: map[string]OpeningHours{
			"monday":    weekday,
			"tuesday":   weekday,
			"wednesday": weekday,
			"thursday":  weekday,
			"friday":    late,
			"saturday":  late,
			"sunday":    {Open: "14:00", Close: "22:00"},
		},
		DeliveryZones: DeliveryZones{
			PostalCodes: append([]string(nil), DenHaagPostalCodes...),
			Fee:         decimal.RequireFromString("3.50"),
			MinOrder:    decimal.RequireFromString("15.00"),
			FreeFrom:    decimal.RequireFromString("35.00"),
		},
		Notifications: NotificationSettings{SoundEnabled: true},
		Payments:      PaymentSettings{IDEAL: true, Card: true, Cash: true},
	}
}
