package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const RoleKeyCustom = "custom"

// roleLabels maps the fixed role keys offered by the form to their stored labels.
var roleLabels = map[string]string{
	"doctor":       "Doctor/a",
	"hygienist":    "Higienista",
	"assistant":    "Auxiliar",
	"receptionist": "Recepción",
}

// ResolveRoleLabel returns the label stored for a role key.
func ResolveRoleLabel(key, custom string) (string, error) {
	if key == RoleKeyCustom {
		label := strings.TrimSpace(custom)
		if label == "" {
			return "", fmt.Errorf("custom role requires a label")
		}
		return label, nil
	}
	if label, ok := roleLabels[key]; ok {
		return label, nil
	}
	return "", fmt.Errorf("unknown role %q", key)
}

type StaffAssignment struct {
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	StaffID       uuid.UUID `db:"staff_id" json:"staff_id"`
	Role          string    `db:"role" json:"role"`
}

// StaffAssignmentInput is one staff row of the confirmation form.
type StaffAssignmentInput struct {
	StaffID    uuid.UUID `json:"staff_id" validate:"required"`
	Role       string    `json:"role" validate:"required,oneof=doctor hygienist assistant receptionist custom"`
	CustomRole string    `json:"custom_role,omitempty" validate:"required_if=Role custom,max=80"`
}
