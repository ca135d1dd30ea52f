package model

import (
	"time"

	"github.com/google/uuid"
)

// Call is a phone interaction handled by the intake channel.
type Call struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	ClinicID       uuid.UUID  `db:"clinic_id" json:"clinic_id"`
	Channel        *string    `db:"channel" json:"channel,omitempty"`
	Direction      *string    `db:"direction" json:"direction,omitempty"`
	IntentSummary  *string    `db:"intent_summary" json:"intent_summary,omitempty"`
	ExternalCallID *string    `db:"external_call_id" json:"external_call_id,omitempty"`
	StartedAt      *time.Time `db:"started_at" json:"started_at,omitempty"`
}

type CallLog struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	CallID         *uuid.UUID `db:"call_id" json:"call_id,omitempty"`
	ExternalCallID *string    `db:"external_call_id" json:"external_call_id,omitempty"`
	Summary        *string    `db:"summary" json:"summary,omitempty"`
}

type SourceKind string

const (
	SourceKindManual  SourceKind = "manual"
	SourceKindUnknown SourceKind = "unknown"
	SourceKindCall    SourceKind = "call"
)

// CallSourceInfo describes where a hold or appointment came from. It is derived on
// demand and never stored.
type CallSourceInfo struct {
	Kind      SourceKind `json:"kind"`
	Channel   *string    `json:"channel,omitempty"`
	Direction *string    `json:"direction,omitempty"`
	Summary   *string    `json:"summary,omitempty"`
	StartedAt *time.Time `json:"started_at,omitempty"`
}
