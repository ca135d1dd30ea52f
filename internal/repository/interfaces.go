package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// ErrNotFound is returned by single-row lookups when nothing matches.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	AppointmentRepository interface {
		// ListByPatient returns every appointment of the patient, newest start first,
		// including cancelled rows.
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		FindBySourceHold(ctx context.Context, holdID uuid.UUID) (*model.Appointment, error)
		Create(ctx context.Context, appointment *model.Appointment) error
		Update(ctx context.Context, id uuid.UUID, update *model.AppointmentUpdate) error
	}

	HoldRepository interface {
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentHold, error)
		Get(ctx context.Context, id uuid.UUID) (*model.AppointmentHold, error)
		Update(ctx context.Context, id uuid.UUID, update *model.HoldUpdate) error
	}

	StaffAssignmentRepository interface {
		ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.StaffAssignment, error)
		// AssignBatch writes all rows in one call.
		AssignBatch(ctx context.Context, appointmentID uuid.UUID, assignments []model.StaffAssignment) error
		// Upsert writes a single row; it is the fallback when the batch call fails.
		Upsert(ctx context.Context, assignment *model.StaffAssignment) error
	}

	CallRepository interface {
		GetCall(ctx context.Context, id uuid.UUID) (*model.Call, error)
	}

	CallLogRepository interface {
		// GetCallLog looks the log up by call id first, then by the provider's external id.
		GetCallLog(ctx context.Context, callID uuid.UUID, externalCallID *string) (*model.CallLog, error)
	}

	ReferenceRepository interface {
		ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error)
		GetService(ctx context.Context, id uuid.UUID) (*model.Service, error)
		ListBoxes(ctx context.Context, clinicID uuid.UUID) ([]*model.Box, error)
		ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error)
	}

	ClinicalNoteRepository interface {
		// Latest returns the most recently created note, or ErrNotFound.
		Latest(ctx context.Context, appointmentID uuid.UUID) (*model.ClinicalNote, error)
		Create(ctx context.Context, note *model.ClinicalNote) error
		Update(ctx context.Context, note *model.ClinicalNote) error
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error
	}
)
