package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusNoShow    AppointmentStatus = "no_show"
)

// IsTerminal reports whether no further transition is allowed.
func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCancelled
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusScheduled, AppointmentStatusConfirmed, AppointmentStatusCompleted,
		AppointmentStatusCancelled, AppointmentStatusNoShow:
		return true
	}
	return false
}

type AppointmentSource string

const (
	AppointmentSourceManual AppointmentSource = "manual"
	AppointmentSourceCall   AppointmentSource = "call"
)

type Appointment struct {
	Base
	ClinicID        uuid.UUID         `db:"clinic_id" json:"clinic_id"`
	PatientID       uuid.UUID         `db:"patient_id" json:"patient_id"`
	BoxID           *uuid.UUID        `db:"box_id" json:"box_id,omitempty"`
	Status          AppointmentStatus `db:"status" json:"status"`
	StartTime       time.Time         `db:"start_time" json:"start_time"`
	EndTime         time.Time         `db:"end_time" json:"end_time"`
	ServiceID       *uuid.UUID        `db:"service_id" json:"service_id,omitempty"`
	ServiceCategory *string           `db:"service_category" json:"service_category,omitempty"`
	Notes           string            `db:"notes" json:"notes"`
	PublicRef       string            `db:"public_ref" json:"public_ref"`
	Source          AppointmentSource `db:"source" json:"source"`
	SourceHoldID    *uuid.UUID        `db:"source_hold_id" json:"source_hold_id,omitempty"`
}

// AppointmentUpdate carries the columns to change; nil fields are left untouched.
type AppointmentUpdate struct {
	Status          *AppointmentStatus
	StartTime       *time.Time
	EndTime         *time.Time
	ServiceID       *uuid.UUID
	ServiceCategory *string
}

func (u *AppointmentUpdate) IsEmpty() bool {
	return u == nil || (u.Status == nil && u.StartTime == nil && u.EndTime == nil &&
		u.ServiceID == nil && u.ServiceCategory == nil)
}

// AppointmentEdit is the operator-facing edit of an appointment. Scheduling fields
// require the appointment-management capability; SOAP is always accepted.
type AppointmentEdit struct {
	Status    *AppointmentStatus `json:"status,omitempty"`
	StartTime *time.Time         `json:"start_time,omitempty"`
	EndTime   *time.Time         `json:"end_time,omitempty"`
	ServiceID *uuid.UUID         `json:"service_id,omitempty"`
	SOAP      *NoteFields        `json:"soap,omitempty"`
}

func (e *AppointmentEdit) HasScheduling() bool {
	return e.Status != nil || e.StartTime != nil || e.EndTime != nil || e.ServiceID != nil
}
