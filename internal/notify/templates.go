package notify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"greek-irini/internal/domain"
)

// Result is what the customer is told about an email. Senders never fail
// past the caller; problems end up in Message.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type Kind string

const (
	KindOrderConfirmation       Kind = "order_confirmation"
	KindReservationConfirmation Kind = "reservation_confirmation"
	KindReservationRejection    Kind = "reservation_rejection"
)

// Message is a rendered email ready for the transactional mail provider.
type Message struct {
	Kind     Kind              `json:"kind"`
	Language domain.Language   `json:"language"`
	To       string            `json:"to_email"`
	ToName   string            `json:"to_name"`
	Subject  string            `json:"subject"`
	Fields   map[string]string `json:"fields"`
}

// texts are written in Dutch and Polish only; every other language gets Dutch.
func polish(lang domain.Language) bool {
	return lang == domain.LangPolish
}

func pick(lang domain.Language, nl, pl string) string {
	if polish(lang) {
		return pl
	}
	return nl
}

func euro(amount decimal.Decimal) string {
	return "€" + amount.StringFixed(2)
}

var paymentNames = map[domain.PaymentMethod][2]string{
	domain.PaymentIDEAL:      {"iDEAL", "iDEAL"},
	domain.PaymentCard:       {"Creditcard", "Karta płatnicza"},
	domain.PaymentCash:       {"Contant bij levering", "Gotówka przy odbiorze"},
	domain.PaymentBancontact: {"Bancontact", "Bancontact"},
}

func paymentName(m domain.PaymentMethod, lang domain.Language) string {
	names, ok := paymentNames[m]
	if !ok {
		return string(m)
	}
	return pick(lang, names[0], names[1])
}

func deliveryName(t domain.DeliveryType, lang domain.Language) string {
	switch t {
	case domain.DeliveryTypeDelivery:
		return pick(lang, "Bezorging", "Dostawa")
	case domain.DeliveryTypePickup:
		return pick(lang, "Afhalen", "Odbiór własny")
	}
	return string(t)
}

func signature(r domain.GeneralSettings, lang domain.Language) string {
	return fmt.Sprintf("%s\n\n%s, %s %s\nTel: %s\nEmail: %s",
		pick(lang, "Met vriendelijke groet,\nTeam "+r.Name, "Z wyrazami szacunku,\nZespół "+r.Name),
		r.Address, r.PostalCode, r.City, r.Phone, r.Email)
}

func OrderConfirmation(o domain.Order, lang domain.Language, r domain.GeneralSettings) Message {
	lines := make([]string, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, fmt.Sprintf("%dx %s - %s", it.Quantity, it.Name, euro(it.LineTotal())))
	}

	fee := "Gratis"
	if o.DeliveryFee.IsPositive() {
		fee = euro(o.DeliveryFee)
	}
	address := pick(lang, "Afhalen bij het restaurant", "Odbiór w restauracji")
	estimated := pick(lang, "15-20 minuten", "15-20 minut")
	if o.Delivery.Type == domain.DeliveryTypeDelivery {
		address = fmt.Sprintf("%s, %s %s", o.Customer.Address, o.Customer.PostalCode, o.Customer.City)
		estimated = pick(lang, "30-45 minuten", "30-45 minut")
	}
	status := pick(lang, "Betalen bij levering", "Do zapłaty przy odbiorze")
	if o.Payment.Status == domain.PaymentPaid {
		status = pick(lang, "Betaald", "Opłacone")
	}
	notes := strings.TrimSpace(o.Customer.Notes)
	if notes == "" {
		notes = pick(lang, "Geen opmerkingen", "Brak uwag")
	}

	return Message{
		Kind:     KindOrderConfirmation,
		Language: lang,
		To:       o.Customer.Email,
		ToName:   o.Customer.Name,
		Subject:  pick(lang, "Orderbevestiging #"+o.ID, "Potwierdzenie zamówienia #"+o.ID),
		Fields: map[string]string{
			"greeting":           pick(lang, "Bedankt voor je bestelling, ", "Dziękujemy za zamówienie, ") + o.Customer.Name + "!",
			"order_id":           o.ID,
			"order_items":        strings.Join(lines, "\n"),
			"subtotal":           euro(o.Subtotal),
			"delivery_fee":       fee,
			"total":              euro(o.Total),
			"delivery_type":      deliveryName(o.Delivery.Type, lang),
			"address":            address,
			"payment_method":     paymentName(o.Payment.Method, lang),
			"payment_status":     status,
			"estimated_time":     estimated,
			"notes":              notes,
			"restaurant_name":    r.Name,
			"restaurant_address": fmt.Sprintf("%s, %s %s", r.Address, r.PostalCode, r.City),
			"restaurant_phone":   r.Phone,
			"footer_text": pick(lang,
				"Bedankt voor je bestelling bij "+r.Name+"! Neem bij vragen gerust contact met ons op.",
				"Dziękujemy za zamówienie w "+r.Name+"! W razie pytań prosimy o kontakt."),
		},
	}
}

func ReservationConfirmation(res domain.Reservation, notes string, lang domain.Language, r domain.GeneralSettings) Message {
	special := strings.TrimSpace(res.SpecialRequests)
	if special == "" {
		special = pick(lang, "Geen", "Brak")
	}
	if strings.TrimSpace(notes) == "" {
		notes = pick(lang, "Alles is klaar voor u!", "Wszystko przygotowane!")
	}
	return Message{
		Kind:     KindReservationConfirmation,
		Language: lang,
		To:       res.CustomerEmail,
		ToName:   res.CustomerName,
		Subject:  pick(lang, "✓ Reserveringsbevestiging - "+r.Name, "✓ Potwierdzenie rezerwacji - "+r.Name),
		Fields: map[string]string{
			"greeting": pick(lang, "Goedendag ", "Dzień dobry ") + res.CustomerName + "!",
			"message": pick(lang,
				"Met veel plezier bevestigen wij uw reservering bij "+r.Name+"!",
				"Z przyjemnością potwierdzamy Twoją rezerwację w "+r.Name+"!"),
			"date":             res.Date,
			"time":             res.Time,
			"guests":           strconv.Itoa(res.NumberOfGuests),
			"special_requests": special,
			"admin_notes":      notes,
			"closing":          pick(lang, "Tot ziens bij ", "Do zobaczenia wkrótce w ") + r.Name + "!\n\n" + signature(r, lang),
			"restaurant_name":  r.Name,
		},
	}
}

func ReservationRejection(res domain.Reservation, alternative string, lang domain.Language, r domain.GeneralSettings) Message {
	msg := pick(lang,
		fmt.Sprintf("Het spijt ons zeer, maar helaas kunnen we uw reservering voor %s om %s niet bevestigen.\n\nOp dit moment zijn we voor deze tijd volledig volgeboekt.", res.Date, res.Time),
		fmt.Sprintf("Bardzo nam przykro, ale niestety nie możemy potwierdzić Twojej rezerwacji na dzień %s o godzinie %s.\n\nW tym terminie mamy już komplety rezerwacji.", res.Date, res.Time))
	if alternative = strings.TrimSpace(alternative); alternative != "" {
		msg += pick(lang,
			"\n\nZou het eventueel mogelijk zijn op een ander tijdstip: "+alternative+"?\n\nAls dit schikt, neem dan gerust contact met ons op en we maken graag een nieuwe reservering voor u.",
			"\n\nCzy może pasowałaby Państwu inna godzina: "+alternative+"?\n\nJeśli tak, prosimy o kontakt telefoniczny lub mailowy, a chętnie dokonamy rezerwacji.")
	} else {
		msg += pick(lang,
			"\n\nNeem gerust contact met ons op voor een alternatief tijdstip. We helpen graag bij het vinden van een geschikt moment.",
			"\n\nProsimy o kontakt w celu ustalenia alternatywnego terminu. Chętnie znajdziemy dla Państwa odpowiednią godzinę.")
	}
	return Message{
		Kind:     KindReservationRejection,
		Language: lang,
		To:       res.CustomerEmail,
		ToName:   res.CustomerName,
		Subject:  pick(lang, "Reservering bij "+r.Name+" - Verzoek tot contact", "Rezerwacja w "+r.Name+" - Prośba o kontakt"),
		Fields: map[string]string{
			"greeting": pick(lang, "Goedendag ", "Dzień dobry ") + res.CustomerName + ",",
			"message":  msg,
			"closing": pick(lang,
				"Onze excuses voor het ongemak en we hopen u binnenkort te mogen verwelkomen!",
				"Przepraszamy za niedogodności i mamy nadzieję, że wkrótce będziemy mogli Państwa gościć!") + "\n\n" + signature(r, lang),
			"restaurant_name": r.Name,
		},
	}
}

// sent and failed are the customer-facing outcome texts per kind.
func sent(k Kind, lang domain.Language) string {
	switch k {
	case KindOrderConfirmation:
		return pick(lang, "Bevestiging verzonden naar je e-mail!", "Potwierdzenie wysłane na email!")
	case KindReservationConfirmation:
		return pick(lang, "Reserveringsbevestiging verzonden!", "Potwierdzenie rezerwacji wysłane na email!")
	}
	return pick(lang, "E-mail verzonden!", "Email wysłany!")
}

func failed(k Kind, lang domain.Language) string {
	if k == KindOrderConfirmation {
		return pick(lang, "E-mail kon niet worden verzonden. Je bestelling is geplaatst.", "Nie udało się wysłać emaila. Zamówienie zostało przyjęte.")
	}
	return pick(lang, "E-mail kon niet worden verzonden.", "Nie udało się wysłać emaila.")
}
