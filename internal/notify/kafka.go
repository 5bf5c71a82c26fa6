package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/missionctl/missionctl/internal/bus"
	"github.com/missionctl/missionctl/internal/store"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaSink streams every activity record to a Kafka topic so the audit
// trail outlives the local database.
type KafkaSink struct {
	writer messageWriter
	store  *store.Store
	log    *slog.Logger
}

// NewKafkaSink returns nil when no brokers are configured.
func NewKafkaSink(brokers []string, topic string, st *store.Store) *KafkaSink {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &KafkaSink{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
		store: st,
		log:   slog.Default().With("component", "kafka-sink"),
	}
}

// Run consumes bus changes until ctx is done, forwarding activity inserts.
// Write failures are logged and dropped.
func (s *KafkaSink) Run(ctx context.Context, b *bus.ChangeBus) {
	ch, cancel := b.Subscribe()
	defer cancel()
	defer s.writer.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case change, ok := <-ch:
			if !ok {
				return
			}
			if change.Collection != store.CollectionActivities || change.Op != bus.OpInsert {
				continue
			}
			s.forward(ctx, change.ID)
		}
	}
}

func (s *KafkaSink) forward(ctx context.Context, id string) {
	act, err := s.store.GetActivity(id)
	if err != nil {
		return
	}
	payload, err := json.Marshal(act)
	if err != nil {
		return
	}
	msg := kafka.Message{Key: []byte(act.Type), Value: payload}
	if err := s.writer.WriteMessages(ctx, msg); err != nil {
		s.log.Warn("kafka write failed", "error", err)
	}
}
