package model

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldStatusHeld      HoldStatus = "held"
	HoldStatusCancelled HoldStatus = "cancelled"
	HoldStatusUsed      HoldStatus = "used"
)

type AppointmentHold struct {
	Base
	ClinicID           uuid.UUID   `db:"clinic_id" json:"clinic_id"`
	PatientID          *uuid.UUID  `db:"patient_id" json:"patient_id,omitempty"`
	BoxID              *uuid.UUID  `db:"box_id" json:"box_id,omitempty"`
	SuggestedServiceID *uuid.UUID  `db:"suggested_service_id" json:"suggested_service_id,omitempty"`
	StartTime          time.Time   `db:"start_time" json:"start_time"`
	EndTime            time.Time   `db:"end_time" json:"end_time"`
	ExpiresAt          *time.Time  `db:"expires_at" json:"expires_at,omitempty"`
	Status             HoldStatus  `db:"status" json:"status"`
	Notes              string      `db:"notes" json:"notes"`
	PublicRef          *string     `db:"public_ref" json:"public_ref,omitempty"`
	Summary            HoldSummary `db:"summary" json:"summary"`
	HeldByCallID       *uuid.UUID  `db:"held_by_call_id" json:"held_by_call_id,omitempty"`
}

// IsActive reports whether the hold still reserves its slot at the given instant.
func (h *AppointmentHold) IsActive(now time.Time) bool {
	if h.Status != HoldStatusHeld {
		return false
	}
	return h.ExpiresAt == nil || h.ExpiresAt.After(now)
}

// HoldUpdate carries the hold columns to change; nil fields are left untouched.
type HoldUpdate struct {
	Status    *HoldStatus
	BoxID     *uuid.UUID
	ServiceID *uuid.UUID
	Notes     *string
}
