package model

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalNote is a SOAP note attached to an appointment. Content holds the legacy
// combined text written before the four sections were stored separately.
type ClinicalNote struct {
	Base
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	AuthorID      uuid.UUID `db:"author_id" json:"author_id"`
	Subjective    *string   `db:"subjective" json:"subjective,omitempty"`
	Objective     *string   `db:"objective" json:"objective,omitempty"`
	Assessment    *string   `db:"assessment" json:"assessment,omitempty"`
	Plan          *string   `db:"plan" json:"plan,omitempty"`
	Content       *string   `db:"content" json:"content,omitempty"`
}

type NoteFields struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// LoadedNote is the authoritative note of an appointment as shown to the operator.
type LoadedNote struct {
	NoteFields
	NoteID    *uuid.UUID `json:"note_id,omitempty"`
	AuthorID  *uuid.UUID `json:"author_id,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}
