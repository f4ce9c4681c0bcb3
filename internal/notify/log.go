package notify

import (
	"context"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

// DemoMessage is returned while no mail provider is configured.
const DemoMessage = "Email logged (demo mode, configure a mail provider for real delivery)"

// RestaurantSource returns the restaurant details printed in every email.
// Mailers call it per message so settings edits show up right away.
type RestaurantSource func() domain.GeneralSettings

// Fixed always returns g.
func Fixed(g domain.GeneralSettings) RestaurantSource {
	return func() domain.GeneralSettings { return g }
}

// LogMailer renders messages and writes them to the log instead of sending.
type LogMailer struct {
	Restaurant RestaurantSource
}

func NewLogMailer(restaurant RestaurantSource) *LogMailer {
	return &LogMailer{Restaurant: restaurant}
}

func (m *LogMailer) SendOrderConfirmation(_ context.Context, o domain.Order, lang domain.Language) Result {
	return m.deliver(OrderConfirmation(o, lang, m.Restaurant()))
}

func (m *LogMailer) SendReservationConfirmation(_ context.Context, r domain.Reservation, notes string, lang domain.Language) Result {
	return m.deliver(ReservationConfirmation(r, notes, lang, m.Restaurant()))
}

func (m *LogMailer) SendReservationRejection(_ context.Context, r domain.Reservation, alternative string, lang domain.Language) Result {
	return m.deliver(ReservationRejection(r, alternative, lang, m.Restaurant()))
}

func (m *LogMailer) deliver(msg Message) Result {
	log.WithFields(log.Fields{
		"kind":    msg.Kind,
		"to":      msg.To,
		"subject": msg.Subject,
		"fields":  msg.Fields,
	}).Info("mail provider not configured, email logged")
	return Result{Success: true, Message: DemoMessage}
}
