package event

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

// Emitter records domain events in the outbox. The worker relays them.
type Emitter interface {
	Emit(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) error
}

type EventService struct {
	outboxRepo repository.OutboxRepository
}

func NewEventService(outboxRepo repository.OutboxRepository) *EventService {
	return &EventService{outboxRepo: outboxRepo}
}

func (s *EventService) Emit(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	event := &model.OutboxEvent{
		EventType:   eventType,
		AggregateID: aggregateID,
		Payload:     payloadJSON,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("failed to create outbox event: %w", err)
	}
	return nil
}

// Payloads of the events emitted by the confirmation engine.
type (
	HoldConfirmed struct {
		HoldID        uuid.UUID  `json:"hold_id"`
		AppointmentID uuid.UUID  `json:"appointment_id"`
		ClinicID      uuid.UUID  `json:"clinic_id"`
		PatientID     uuid.UUID  `json:"patient_id"`
		BoxID         *uuid.UUID `json:"box_id,omitempty"`
		ServiceID     *uuid.UUID `json:"service_id,omitempty"`
		ConfirmedBy   uuid.UUID  `json:"confirmed_by"`
		StaffAssigned bool       `json:"staff_assigned"`
	}

	HoldCancelled struct {
		HoldID      uuid.UUID `json:"hold_id"`
		ClinicID    uuid.UUID `json:"clinic_id"`
		CancelledBy uuid.UUID `json:"cancelled_by"`
	}

	AppointmentCancelled struct {
		AppointmentID uuid.UUID `json:"appointment_id"`
		ClinicID      uuid.UUID `json:"clinic_id"`
		PatientID     uuid.UUID `json:"patient_id"`
		CancelledBy   uuid.UUID `json:"cancelled_by"`
	}

	AppointmentUpdated struct {
		AppointmentID uuid.UUID `json:"appointment_id"`
		PatientID     uuid.UUID `json:"patient_id"`
		UpdatedBy     uuid.UUID `json:"updated_by"`
		Fields        []string  `json:"fields"`
	}
)
