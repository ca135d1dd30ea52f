package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

type Config struct {
	Brokers string
	GroupID string
}

// Broker publishes outbox messages to Kafka, one topic per event type.
type Broker struct {
	brokers []string
	groupID string
	writer  *kafka.Writer
	logger  zerolog.Logger

	mu      sync.Mutex
	readers []*kafka.Reader
}

func NewBroker(cfg Config, logger zerolog.Logger) (*Broker, error) {
	brokers := SplitBrokers(cfg.Brokers)
	if len(brokers) == 0 {
		return nil, errors.New("no kafka brokers configured")
	}
	return &Broker{
		brokers: brokers,
		groupID: cfg.GroupID,
		writer: kafka.NewWriter(kafka.WriterConfig{
			Brokers:  brokers,
			Balancer: &kafka.Hash{},
		}),
		logger: logger.With().Str("component", "kafka-broker").Logger(),
	}, nil
}

func (b *Broker) Publish(ctx context.Context, topic string, msg messaging.Message) error {
	km := ToKafkaMessage(ctx, topic, msg)
	if err := b.writer.WriteMessages(ctx, km); err != nil {
		return fmt.Errorf("failed to write kafka message: %w", err)
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context, topic string) (<-chan messaging.Message, error) {
	if b.groupID == "" {
		return nil, errors.New("kafka subscribe requires a consumer group")
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: b.brokers,
		GroupID: b.groupID,
		Topic:   topic,
	})
	b.mu.Lock()
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	out := make(chan messaging.Message, 100)
	go func() {
		defer close(out)
		for {
			km, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() == nil {
					b.logger.Error().Err(err).Str("topic", topic).Msg("kafka read failed")
				}
				return
			}
			select {
			case out <- FromKafkaMessage(km):
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs []error
	for _, r := range b.readers {
		errs = append(errs, r.Close())
	}
	errs = append(errs, b.writer.Close())
	return errors.Join(errs...)
}

// ToKafkaMessage carries the event id and type as headers along with the
// W3C trace context of ctx.
func ToKafkaMessage(ctx context.Context, topic string, msg messaging.Message) kafka.Message {
	km := kafka.Message{
		Topic: topic,
		Key:   []byte(msg.Key),
		Value: msg.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(msg.ID)},
			{Key: "event_type", Value: []byte(msg.Type)},
		},
	}
	carrier := &headerCarrier{headers: km.Headers}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	km.Headers = carrier.headers
	return km
}

func FromKafkaMessage(km kafka.Message) messaging.Message {
	msg := messaging.Message{
		ID:      headerValue(km.Headers, "event_id"),
		Type:    headerValue(km.Headers, "event_type"),
		Key:     string(km.Key),
		Payload: json.RawMessage(km.Value),
	}
	if msg.Type == "" {
		msg.Type = km.Topic
	}
	return msg
}

func SplitBrokers(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func headerValue(headers []kafka.Header, key string) string {
	for _, h := range headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

type headerCarrier struct {
	headers []kafka.Header
}

func (c *headerCarrier) Get(key string) string { return headerValue(c.headers, key) }

func (c *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(c.headers))
	for _, h := range c.headers {
		keys = append(keys, h.Key)
	}
	return keys
}

func (c *headerCarrier) Set(key, value string) {
	for i := range c.headers {
		if c.headers[i].Key == key {
			c.headers[i].Value = []byte(value)
			return
		}
	}
	c.headers = append(c.headers, kafka.Header{Key: key, Value: []byte(value)})
}

var (
	_ propagation.TextMapCarrier = (*headerCarrier)(nil)
	_ messaging.Broker           = (*Broker)(nil)
)
