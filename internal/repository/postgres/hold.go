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

const holdColumns = `id, clinic_id, patient_id, box_id, suggested_service_id, start_time, end_time,
	expires_at, status, notes, public_ref, summary, held_by_call_id, created_at, updated_at`

type holdRepository struct {
	BaseRepository
}

func NewHoldRepository(base BaseRepository) repository.HoldRepository {
	return &holdRepository{base}
}

func (r *holdRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentHold, error) {
	query := `SELECT ` + holdColumns + `
		FROM appointment_holds
		WHERE patient_id = $1
		ORDER BY start_time DESC`

	var holds []*model.AppointmentHold
	if err := r.db.SelectContext(ctx, &holds, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list holds: %w", err)
	}
	return holds, nil
}

func (r *holdRepository) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentHold, error) {
	query := `SELECT ` + holdColumns + ` FROM appointment_holds WHERE id = $1`

	var hold model.AppointmentHold
	if err := r.db.GetContext(ctx, &hold, query, id); err != nil {
		return nil, notFound(err, "get hold")
	}
	return &hold, nil
}

func (r *holdRepository) Update(ctx context.Context, id uuid.UUID, update *model.HoldUpdate) error {
	var set setBuilder
	if update.Status != nil {
		set.add("status", *update.Status)
	}
	if update.BoxID != nil {
		set.add("box_id", *update.BoxID)
	}
	if update.ServiceID != nil {
		set.add("suggested_service_id", *update.ServiceID)
	}
	if update.Notes != nil {
		set.add("notes", *update.Notes)
	}
	if set.empty() {
		return nil
	}
	set.add("updated_at", time.Now())
	set.args = append(set.args, id)

	query := fmt.Sprintf(`UPDATE appointment_holds SET %s WHERE id = $%d`,
		strings.Join(set.clauses, ", "), len(set.args))

	res, err := r.db.ExecContext(ctx, query, set.args...)
	if err != nil {
		return fmt.Errorf("failed to update hold: %w", err)
	}
	return expectRows(res, "update hold")
}
