package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

const appointmentColumns = `id, clinic_id, patient_id, box_id, status, start_time, end_time,
	service_id, service_category, notes, public_ref, source, source_hold_id,
	created_at, updated_at`

type appointmentRepository struct {
	BaseRepository
}

func NewAppointmentRepository(base BaseRepository) repository.AppointmentRepository {
	return &appointmentRepository{base}
}

func (r *appointmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE patient_id = $1
		ORDER BY start_time DESC`

	var appointments []*model.Appointment
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, notFound(err, "get appointment")
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBySourceHold(ctx context.Context, holdID uuid.UUID) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + `
		FROM appointments
		WHERE source_hold_id = $1
		ORDER BY created_at ASC
		LIMIT 1`

	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, holdID); err != nil {
		return nil, notFound(err, "find appointment by hold")
	}
	return &appointment, nil
}

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, clinic_id, patient_id, box_id, status, start_time, end_time,
			service_id, service_category, notes, public_ref, source, source_hold_id,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	if appointment.ID == uuid.Nil {
		appointment.ID = uuid.New()
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.ClinicID,
		appointment.PatientID,
		appointment.BoxID,
		appointment.Status,
		appointment.StartTime,
		appointment.EndTime,
		appointment.ServiceID,
		appointment.ServiceCategory,
		appointment.Notes,
		appointment.PublicRef,
		appointment.Source,
		appointment.SourceHoldID,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Update(ctx context.Context, id uuid.UUID, update *model.AppointmentUpdate) error {
	if update.IsEmpty() {
		return nil
	}

	var set setBuilder
	if update.Status != nil {
		set.add("status", *update.Status)
	}
	if update.StartTime != nil {
		set.add("start_time", *update.StartTime)
	}
	if update.EndTime != nil {
		set.add("end_time", *update.EndTime)
	}
	if update.ServiceID != nil {
		set.add("service_id", *update.ServiceID)
	}
	if update.ServiceCategory != nil {
		set.add("service_category", *update.ServiceCategory)
	}
	set.add("updated_at", time.Now())
	set.args = append(set.args, id)

	query := fmt.Sprintf(`UPDATE appointments SET %s WHERE id = $%d`,
		strings.Join(set.clauses, ", "), len(set.args))

	res, err := r.db.ExecContext(ctx, query, set.args...)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return expectRows(res, "update appointment")
}
