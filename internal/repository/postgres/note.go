package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type clinicalNoteRepository struct {
	BaseRepository
}

func NewClinicalNoteRepository(base BaseRepository) repository.ClinicalNoteRepository {
	return &clinicalNoteRepository{base}
}

func (r *clinicalNoteRepository) Latest(ctx context.Context, appointmentID uuid.UUID) (*model.ClinicalNote, error) {
	query := `
		SELECT id, appointment_id, author_id, subjective, objective, assessment, plan, content,
			created_at, updated_at
		FROM clinical_notes
		WHERE appointment_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var note model.ClinicalNote
	if err := r.db.GetContext(ctx, &note, query, appointmentID); err != nil {
		return nil, notFound(err, "get latest clinical note")
	}
	return &note, nil
}

func (r *clinicalNoteRepository) Create(ctx context.Context, note *model.ClinicalNote) error {
	query := `
		INSERT INTO clinical_notes (
			id, appointment_id, author_id, subjective, objective, assessment, plan, content,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	note.ID = uuid.New()
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		note.ID,
		note.AppointmentID,
		note.AuthorID,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Content,
		note.CreatedAt,
		note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical note: %w", err)
	}
	return nil
}

// Update rewrites the four sections of an existing note. The author is part of
// the predicate so a note is never overwritten by someone else.
func (r *clinicalNoteRepository) Update(ctx context.Context, note *model.ClinicalNote) error {
	query := `
		UPDATE clinical_notes
		SET subjective = $1, objective = $2, assessment = $3, plan = $4, content = $5, updated_at = $6
		WHERE id = $7 AND author_id = $8
	`
	note.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, query,
		note.Subjective,
		note.Objective,
		note.Assessment,
		note.Plan,
		note.Content,
		note.UpdatedAt,
		note.ID,
		note.AuthorID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinical note: %w", err)
	}
	return expectRows(res, "update clinical note")
}
