package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, body []byte) error
}

// AMQPPublisher publishes on a confirm-mode channel and waits for the broker
// ack of every message. Publishes are serialized.
type AMQPPublisher struct {
	ch   *amqp.Channel
	acks <-chan amqp.Confirmation
	mu   sync.Mutex
}

func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	if exchange != "" {
		if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
			_ = ch.Close()
			return nil, err
		}
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		return nil, err
	}
	acks := ch.NotifyPublish(make(chan amqp.Confirmation, 16))
	return &AMQPPublisher{ch: ch, acks: acks}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, exchange, key string, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	tag := p.ch.GetNextPublishSeqNo()
	if err := p.ch.PublishWithContext(ctx, exchange, key, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Timestamp:    time.Now(),
		Body:         body,
	}); err != nil {
		return err
	}
	return awaitConfirm(ctx, p.acks, tag)
}

// awaitConfirm waits for the confirmation of delivery tag. Confirmations of
// earlier messages whose wait timed out are skipped.
func awaitConfirm(ctx context.Context, acks <-chan amqp.Confirmation, tag uint64) error {
	for {
		select {
		case conf, ok := <-acks:
			if !ok {
				return errors.New("confirm channel closed")
			}
			if conf.DeliveryTag < tag {
				continue
			}
			if conf.DeliveryTag > tag {
				return fmt.Errorf("confirm for delivery %d missing, got %d", tag, conf.DeliveryTag)
			}
			if conf.Ack {
				return nil
			}
			return errors.New("publish NACK from broker")
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}

// AMQPMailer hands rendered messages to the mail worker over RabbitMQ. The
// routing key is "email.<kind>".
type AMQPMailer struct {
	Publisher  Publisher
	Exchange   string
	Restaurant RestaurantSource
	Timeout    time.Duration
}

func NewAMQPMailer(p Publisher, exchange string, restaurant RestaurantSource) *AMQPMailer {
	return &AMQPMailer{Publisher: p, Exchange: exchange, Restaurant: restaurant, Timeout: 5 * time.Second}
}

func (m *AMQPMailer) SendOrderConfirmation(ctx context.Context, o domain.Order, lang domain.Language) Result {
	return m.deliver(ctx, OrderConfirmation(o, lang, m.Restaurant()))
}

func (m *AMQPMailer) SendReservationConfirmation(ctx context.Context, r domain.Reservation, notes string, lang domain.Language) Result {
	return m.deliver(ctx, ReservationConfirmation(r, notes, lang, m.Restaurant()))
}

func (m *AMQPMailer) SendReservationRejection(ctx context.Context, r domain.Reservation, alternative string, lang domain.Language) Result {
	return m.deliver(ctx, ReservationRejection(r, alternative, lang, m.Restaurant()))
}

func (m *AMQPMailer) deliver(ctx context.Context, msg Message) Result {
	logger := log.WithFields(log.Fields{"kind": msg.Kind, "to": msg.To})
	body, err := json.Marshal(msg)
	if err != nil {
		logger.WithError(err).Error("failed to encode email")
		return Result{Success: false, Message: failed(msg.Kind, msg.Language)}
	}
	if m.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.Timeout)
		defer cancel()
	}
	if err := m.Publisher.Publish(ctx, m.Exchange, "email."+string(msg.Kind), body); err != nil {
		logger.WithError(err).Error("failed to queue email")
		return Result{Success: false, Message: failed(msg.Kind, msg.Language)}
	}
	logger.Info("email queued")
	return Result{Success: true, Message: sent(msg.Kind, msg.Language)}
}
