package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// NewChangeWriter hashes message keys to partitions so every change to one
// record lands on the same partition.
func NewChangeWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.Hash{},
	}
}

// ChangeReaderConfig starts a new group at the tail of the topic. State is
// already loaded from the record store or a snapshot on startup.
func ChangeReaderConfig(brokers []string, topic, groupID string) kafka.ReaderConfig {
	return kafka.ReaderConfig{
		Brokers:     brokers,
		Topic:       topic,
		GroupID:     groupID,
		StartOffset: kafka.LastOffset,
	}
}

type KafkaPublisher struct {
	Writer MessageWriter
}

func NewKafkaPublisher(writer MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// Publish keys messages by entity and id. With the hash balancer of
// NewChangeWriter, changes to one record stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(string(ev.Entity) + ":" + ev.ID),
		Value: payload,
	})
}

// ChangeFeed reads the change topic and fans every event out to the
// registered handlers.
type ChangeFeed struct {
	Reader MessageReader

	mu       sync.RWMutex
	handlers map[uuid.UUID]func(domain.ChangeEvent)
}

func NewChangeFeed(reader MessageReader) *ChangeFeed {
	return &ChangeFeed{Reader: reader, handlers: make(map[uuid.UUID]func(domain.ChangeEvent))}
}

func (f *ChangeFeed) Subscribe(handler func(domain.ChangeEvent)) uuid.UUID {
	id := uuid.New()
	f.mu.Lock()
	f.handlers[id] = handler
	f.mu.Unlock()
	return id
}

func (f *ChangeFeed) Unsubscribe(handle uuid.UUID) {
	f.mu.Lock()
	delete(f.handlers, handle)
	f.mu.Unlock()
}

// Dispatch hands ev to every current subscriber.
func (f *ChangeFeed) Dispatch(ev domain.ChangeEvent) {
	f.mu.RLock()
	handlers := make([]func(domain.ChangeEvent), 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.RUnlock()
	for _, h := range handlers {
		h(ev)
	}
}

// Run consumes until ctx is cancelled. Undecodable messages are skipped.
func (f *ChangeFeed) Run(ctx context.Context) error {
	log.Info("change feed consumer started")
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		msg, err := f.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			log.WithError(err).Error("reading change feed")
			return err
		}
		var ev domain.ChangeEvent
		if err := json.Unmarshal(msg.Value, &ev); err != nil {
			log.WithError(err).WithField("offset", msg.Offset).Warn("skipping undecodable change event")
			continue
		}
		f.Dispatch(ev)
	}
}
