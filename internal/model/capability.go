package model

import "github.com/google/uuid"

// Capabilities are computed by the authorization collaborator and passed in with every
// operation.
type Capabilities struct {
	CanManageAppointments bool `json:"can_manage_appointments"`
	CanAssignStaff        bool `json:"can_assign_staff"`
}

// Actor is the staff member performing an operation.
type Actor struct {
	StaffID  uuid.UUID `json:"staff_id"`
	ClinicID uuid.UUID `json:"clinic_id"`
	Capabilities
}
