package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greek-irini/internal/domain"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

// scriptedReader replays messages, then fails with err or blocks until the
// context is cancelled.
type scriptedReader struct {
	msgs []kafka.Message
	err  error
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) > 0 {
		m := r.msgs[0]
		r.msgs = r.msgs[1:]
		return m, nil
	}
	if r.err != nil {
		return kafka.Message{}, r.err
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &recordingWriter{}
	publisher := NewKafkaPublisher(writer)

	ev, err := domain.NewChangeEvent(domain.EntityOrder, domain.OpUpdate, "o-7", map[string]string{"status": "ready"})
	require.NoError(t, err)
	ev.Source = "instance-a"
	require.NoError(t, publisher.Publish(context.Background(), ev))

	require.Len(t, writer.msgs, 1)
	assert.Equal(t, "orders:o-7", string(writer.msgs[0].Key))

	var decoded domain.ChangeEvent
	require.NoError(t, json.Unmarshal(writer.msgs[0].Value, &decoded))
	assert.Equal(t, domain.OpUpdate, decoded.Op)
	assert.Equal(t, "instance-a", decoded.Source)
	assert.JSONEq(t, `{"status":"ready"}`, string(decoded.Record))

	writer.err = errors.New("broker down")
	assert.Error(t, publisher.Publish(context.Background(), ev))
}

func encodedEvent(t *testing.T, entity domain.Entity, id string) kafka.Message {
	t.Helper()
	ev, err := domain.NewChangeEvent(entity, domain.OpInsert, id, map[string]string{"id": id})
	require.NoError(t, err)
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	return kafka.Message{Value: raw}
}

func TestChangeFeed_Run(t *testing.T) {
	reader := &scriptedReader{
		msgs: []kafka.Message{
			encodedEvent(t, domain.EntityMenuItem, "baklava"),
			{Value: []byte("garbage"), Offset: 4},
			encodedEvent(t, domain.EntityDriver, "DRV-009"),
		},
		err: errors.New("connection lost"),
	}
	feed := NewChangeFeed(reader)

	var first, second []string
	feed.Subscribe(func(ev domain.ChangeEvent) { first = append(first, ev.ID) })
	handle := feed.Subscribe(func(ev domain.ChangeEvent) { second = append(second, ev.ID) })

	err := feed.Run(context.Background())
	assert.EqualError(t, err, "connection lost")
	assert.Equal(t, []string{"baklava", "DRV-009"}, first)
	assert.Equal(t, []string{"baklava", "DRV-009"}, second)

	feed.Unsubscribe(handle)
	feed.Dispatch(domain.ChangeEvent{ID: "after"})
	assert.Equal(t, []string{"baklava", "DRV-009", "after"}, first)
	assert.Len(t, second, 2)
}

func TestChangeFeed_RunStopsOnCancel(t *testing.T) {
	feed := NewChangeFeed(&scriptedReader{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}

func TestNewChangeWriter_HashesKeys(t *testing.T) {
	w := NewChangeWriter([]string{"k1:9092", "k2:9092"}, "irini.changes")
	defer w.Close()

	assert.IsType(t, &kafka.Hash{}, w.Balancer)
	assert.Equal(t, "irini.changes", w.Topic)

	// one key always maps to one partition
	partitions := []int{0, 1, 2, 3, 4, 5}
	msg := kafka.Message{Key: []byte("orders:o-7")}
	first := w.Balancer.Balance(msg, partitions...)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, w.Balancer.Balance(msg, partitions...))
	}
}

func TestChangeReaderConfig_StartsAtTail(t *testing.T) {
	conf := ChangeReaderConfig([]string{"k1:9092"}, "irini.changes", "irini-node-1")

	assert.Equal(t, kafka.LastOffset, conf.StartOffset)
	assert.Equal(t, "irini-node-1", conf.GroupID)
	assert.Equal(t, []string{"k1:9092"}, conf.Brokers)
	require.NoError(t, conf.Validate())
}
