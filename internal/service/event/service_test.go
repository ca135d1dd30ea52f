package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
)

type fakeOutbox struct {
	created []*model.OutboxEvent
	err     error
}

func (f *fakeOutbox) Create(ctx context.Context, event *model.OutboxEvent) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	return nil
}

func TestEmit(t *testing.T) {
	repo := &fakeOutbox{}
	svc := NewEventService(repo)
	holdID := uuid.New()

	err := svc.Emit(context.Background(), model.EventHoldCancelled, holdID, HoldCancelled{HoldID: holdID})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	evt := repo.created[0]
	assert.Equal(t, model.EventHoldCancelled, evt.EventType)
	assert.Equal(t, holdID, evt.AggregateID)
	assert.JSONEq(t, `{"hold_id":"`+holdID.String()+`","clinic_id":"00000000-0000-0000-0000-000000000000","cancelled_by":"00000000-0000-0000-0000-000000000000"}`, string(evt.Payload))
}

func TestEmitRepositoryFailure(t *testing.T) {
	svc := NewEventService(&fakeOutbox{err: errors.New("db down")})
	err := svc.Emit(context.Background(), model.EventHoldCancelled, uuid.New(), struct{}{})
	assert.ErrorContains(t, err, "failed to create outbox event")
}
