package model

import (
	"github.com/google/uuid"
)

// Box is a treatment room or chair of a clinic.
type Box struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name     string    `db:"name" json:"name"`
	Active   bool      `db:"active" json:"active"`
}

type Service struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name     string    `db:"name" json:"name"`
	Category *string   `db:"category" json:"category,omitempty"`
	Duration int       `db:"duration" json:"duration"` // in minutes
}

// Label is the best-effort category label cached on appointments.
func (s *Service) Label() string {
	if s.Category != nil && *s.Category != "" {
		return *s.Category
	}
	return s.Name
}

type Staff struct {
	ID       uuid.UUID `db:"id" json:"id"`
	ClinicID uuid.UUID `db:"clinic_id" json:"clinic_id"`
	Name     string    `db:"name" json:"name"`
	Status   string    `db:"status" json:"status"`
}

// ConfirmationOptions are the choices offered by the confirmation form.
type ConfirmationOptions struct {
	Services []*Service `json:"services"`
	Boxes    []*Box     `json:"boxes"`
	Staff    []*Staff   `json:"staff"`
}
