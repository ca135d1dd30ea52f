package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestSplitBrokers(t *testing.T) {
	assert.Equal(t, []string{"a:9092", "b:9092"}, SplitBrokers(" a:9092, ,b:9092 "))
	assert.Nil(t, SplitBrokers(""))
}

func TestNewBrokerRequiresBrokers(t *testing.T) {
	_, err := NewBroker(Config{Brokers: " "}, zerolog.Nop())
	assert.Error(t, err)
}

func TestMessageRoundTripKeepsMetadata(t *testing.T) {
	msg := messaging.Message{
		ID:      "evt-1",
		Type:    "appointment.cancelled",
		Key:     "appt-1",
		Payload: json.RawMessage(`{"appointment_id":"appt-1"}`),
	}

	km := ToKafkaMessage(context.Background(), "appointment.cancelled", msg)
	assert.Equal(t, "appointment.cancelled", km.Topic)
	assert.Equal(t, []byte("appt-1"), km.Key)

	assert.Equal(t, msg, FromKafkaMessage(km))
}

func TestFromKafkaMessageFallsBackToTopic(t *testing.T) {
	got := FromKafkaMessage(kafka.Message{Topic: "hold.cancelled", Value: []byte(`{}`)})
	assert.Equal(t, "hold.cancelled", got.Type)
}

func TestToKafkaMessageInjectsTraceContext(t *testing.T) {
	prev := otel.GetTextMapPropagator()
	otel.SetTextMapPropagator(propagation.TraceContext{})
	defer otel.SetTextMapPropagator(prev)

	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	ctx := trace.ContextWithSpanContext(context.Background(), trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	}))

	km := ToKafkaMessage(ctx, "hold.confirmed", messaging.Message{ID: "e"})
	assert.Equal(t, "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01", headerValue(km.Headers, "traceparent"))
}
