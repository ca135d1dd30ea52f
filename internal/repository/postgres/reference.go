package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type referenceRepository struct {
	BaseRepository
}

func NewReferenceRepository(base BaseRepository) repository.ReferenceRepository {
	return &referenceRepository{base}
}

func (r *referenceRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT id, clinic_id, name, category, duration
		FROM services
		WHERE clinic_id = $1
		ORDER BY name ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list services: %w", err)
	}
	return services, nil
}

func (r *referenceRepository) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	query := `SELECT id, clinic_id, name, category, duration FROM services WHERE id = $1`

	var service model.Service
	if err := r.db.GetContext(ctx, &service, query, id); err != nil {
		return nil, notFound(err, "get service")
	}
	return &service, nil
}

func (r *referenceRepository) ListBoxes(ctx context.Context, clinicID uuid.UUID) ([]*model.Box, error) {
	query := `
		SELECT id, clinic_id, name, active
		FROM boxes
		WHERE clinic_id = $1 AND active = TRUE
		ORDER BY name ASC
	`
	var boxes []*model.Box
	if err := r.db.SelectContext(ctx, &boxes, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list boxes: %w", err)
	}
	return boxes, nil
}

// ListStaff returns the active roster of the clinic.
func (r *referenceRepository) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, clinic_id, name, status
		FROM staff
		WHERE clinic_id = $1 AND status = 'active'
		ORDER BY name ASC
	`
	var staff []*model.Staff
	if err := r.db.SelectContext(ctx, &staff, query, clinicID); err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}
