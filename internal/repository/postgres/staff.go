package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type staffAssignmentRepository struct {
	BaseRepository
}

func NewStaffAssignmentRepository(base BaseRepository) repository.StaffAssignmentRepository {
	return &staffAssignmentRepository{base}
}

func (r *staffAssignmentRepository) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.StaffAssignment, error) {
	query := `
		SELECT appointment_id, staff_id, role
		FROM appointment_staff
		WHERE appointment_id = $1
		ORDER BY created_at ASC
	`
	var assignments []*model.StaffAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, appointmentID); err != nil {
		return nil, fmt.Errorf("failed to list staff assignments: %w", err)
	}
	return assignments, nil
}

type staffRow struct {
	StaffID uuid.UUID `json:"staff_id"`
	Role    string    `json:"role"`
}

// AssignBatch hands every row to the assign_appointment_staff stored function,
// which writes them in one statement.
func (r *staffAssignmentRepository) AssignBatch(ctx context.Context, appointmentID uuid.UUID, assignments []model.StaffAssignment) error {
	rows := make([]staffRow, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, staffRow{StaffID: a.StaffID, Role: a.Role})
	}
	payload, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to marshal staff assignments: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, `SELECT assign_appointment_staff($1, $2::jsonb)`, appointmentID, payload); err != nil {
		return fmt.Errorf("failed to assign staff: %w", err)
	}
	return nil
}

func (r *staffAssignmentRepository) Upsert(ctx context.Context, assignment *model.StaffAssignment) error {
	query := `
		INSERT INTO appointment_staff (appointment_id, staff_id, role, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (appointment_id, staff_id) DO UPDATE SET role = EXCLUDED.role
	`
	if _, err := r.db.ExecContext(ctx, query, assignment.AppointmentID, assignment.StaffID, assignment.Role); err != nil {
		return fmt.Errorf("failed to upsert staff assignment: %w", err)
	}
	return nil
}
