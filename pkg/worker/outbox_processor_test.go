package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/repotest"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/messaging"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

type published struct {
	topic string
	msg   messaging.Message
}

type fakeBroker struct {
	mu       sync.Mutex
	failures map[string]int
	sent     []published
	calls    int
}

func (b *fakeBroker) Publish(ctx context.Context, topic string, msg messaging.Message) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.failures[msg.ID] > 0 {
		b.failures[msg.ID]--
		return errors.New("broker unavailable")
	}
	b.sent = append(b.sent, published{topic: topic, msg: msg})
	return nil
}

func (b *fakeBroker) Subscribe(ctx context.Context, topic string) (<-chan messaging.Message, error) {
	return nil, errors.New("not supported")
}

func (b *fakeBroker) Close() error { return nil }

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  10 * time.Millisecond,
		RetryAttempts: 3,
		RetryDelay:    time.Millisecond,
	}
}

func addEvent(t *testing.T, outbox *repotest.Outbox, eventType string) *model.OutboxEvent {
	t.Helper()
	payload, err := json.Marshal(map[string]string{"hold_id": uuid.NewString()})
	require.NoError(t, err)
	e := &model.OutboxEvent{EventType: eventType, AggregateID: uuid.New(), Payload: payload}
	require.NoError(t, outbox.Create(context.Background(), e))
	return e
}

func TestProcessBatchPublishesAndMarksProcessed(t *testing.T) {
	outbox := &repotest.Outbox{}
	confirmed := addEvent(t, outbox, model.EventHoldConfirmed)
	cancelled := addEvent(t, outbox, model.EventAppointmentCancelled)
	broker := &fakeBroker{}
	m := metrics.New("test", nil)

	p := NewOutboxProcessor(outbox, broker, testConfig(), logger.Nop(), m)
	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, broker.sent, 2)
	assert.Equal(t, model.EventHoldConfirmed, broker.sent[0].topic)
	assert.Equal(t, confirmed.ID.String(), broker.sent[0].msg.ID)
	assert.Equal(t, confirmed.AggregateID.String(), broker.sent[0].msg.Key)
	assert.JSONEq(t, string(confirmed.Payload), string(broker.sent[0].msg.Payload))
	assert.Equal(t, model.EventAppointmentCancelled, broker.sent[1].topic)

	assert.Equal(t, model.OutboxStatusProcessed, confirmed.Status)
	assert.Equal(t, model.OutboxStatusProcessed, cancelled.Status)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxEventsProcessed))
}

func TestProcessBatchRetriesThenSucceeds(t *testing.T) {
	outbox := &repotest.Outbox{}
	e := addEvent(t, outbox, model.EventHoldCancelled)
	broker := &fakeBroker{failures: map[string]int{e.ID.String(): 2}}
	m := metrics.New("test", nil)

	p := NewOutboxProcessor(outbox, broker, testConfig(), logger.Nop(), m)
	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, broker.calls)
	assert.Equal(t, model.OutboxStatusProcessed, e.Status)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxRetries.WithLabelValues(model.EventHoldCancelled)))
}

func TestProcessBatchMarksFailedAfterRetries(t *testing.T) {
	outbox := &repotest.Outbox{}
	bad := addEvent(t, outbox, model.EventHoldConfirmed)
	good := addEvent(t, outbox, model.EventAppointmentUpdated)
	broker := &fakeBroker{failures: map[string]int{bad.ID.String(): 10}}
	m := metrics.New("test", nil)

	p := NewOutboxProcessor(outbox, broker, testConfig(), logger.Nop(), m)
	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, model.OutboxStatusFailed, bad.Status)
	require.NotNil(t, bad.ErrorMessage)
	assert.Contains(t, *bad.ErrorMessage, "broker unavailable")
	assert.Equal(t, 1, bad.RetryCount)
	assert.Equal(t, model.OutboxStatusProcessed, good.Status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxEventsFailed))
}

func TestStartStopsWithContext(t *testing.T) {
	outbox := &repotest.Outbox{}
	e := addEvent(t, outbox, model.EventHoldConfirmed)
	broker := &fakeBroker{}
	p := NewOutboxProcessor(outbox, broker, testConfig(), logger.Nop(), metrics.New("test", nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		broker.mu.Lock()
		defer broker.mu.Unlock()
		return len(broker.sent) == 1
	}, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("processor did not stop")
	}
	pending, err := outbox.GetPendingEvents(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, pending)
	assert.Equal(t, model.OutboxStatusProcessed, statusOf(outbox, e.ID))
}

func TestNewOutboxProcessorRejectsBadConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewOutboxProcessor(&repotest.Outbox{}, &fakeBroker{}, OutboxProcessorConfig{}, logger.Nop(), metrics.New("test", nil))
	})
}

func statusOf(outbox *repotest.Outbox, id uuid.UUID) model.OutboxStatus {
	for _, e := range outbox.Events {
		if e.ID == id {
			return e.Status
		}
	}
	return ""
}
