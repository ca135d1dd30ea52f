package note

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// legacySection matches the "S:", "O:", "A:" and "P:" labels of combined notes.
var legacySection = regexp.MustCompile(`(?:^|\s)([SOAP])\s*:`)

type Reconciler struct {
	repo    repository.ClinicalNoteRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewReconciler(repo repository.ClinicalNoteRepository, log *logger.Logger, m *metrics.Metrics) *Reconciler {
	return &Reconciler{
		repo:    repo,
		logger:  log.With("note-reconciler"),
		metrics: m,
	}
}

// Load returns the newest note of the appointment. Sections missing from the
// structured columns are taken from the legacy combined text.
func (r *Reconciler) Load(ctx context.Context, appointmentID uuid.UUID) (*model.LoadedNote, error) {
	note, err := r.repo.Latest(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.LoadedNote{}, nil
		}
		return nil, fmt.Errorf("failed to load clinical note: %w", err)
	}

	var legacy model.NoteFields
	if note.Content != nil {
		legacy = ParseLegacy(*note.Content)
	}

	loaded := &model.LoadedNote{
		NoteFields: model.NoteFields{
			Subjective: pick(note.Subjective, legacy.Subjective),
			Objective:  pick(note.Objective, legacy.Objective),
			Assessment: pick(note.Assessment, legacy.Assessment),
			Plan:       pick(note.Plan, legacy.Plan),
		},
	}
	id, author, created := note.ID, note.AuthorID, note.CreatedAt
	loaded.NoteID = &id
	loaded.AuthorID = &author
	loaded.CreatedAt = &created
	return loaded, nil
}

// Save overwrites the newest note only when authorID wrote it; anyone else gets
// a new note. It returns the stored note, or nil when there was nothing to write.
func (r *Reconciler) Save(ctx context.Context, appointmentID, authorID uuid.UUID, fields model.NoteFields) (*model.ClinicalNote, error) {
	latest, err := r.repo.Latest(ctx, appointmentID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load clinical note: %w", err)
	}

	if latest != nil && latest.AuthorID == authorID {
		latest.Subjective = optional(fields.Subjective)
		latest.Objective = optional(fields.Objective)
		latest.Assessment = optional(fields.Assessment)
		latest.Plan = optional(fields.Plan)
		// the structured fields now hold the whole note
		latest.Content = nil
		if err := r.repo.Update(ctx, latest); err != nil {
			r.observe("update", err)
			return nil, fmt.Errorf("failed to update clinical note: %w", err)
		}
		r.observe("update", nil)
		return latest, nil
	}

	if isBlank(fields) {
		return nil, nil
	}

	note := &model.ClinicalNote{
		AppointmentID: appointmentID,
		AuthorID:      authorID,
		Subjective:    optional(fields.Subjective),
		Objective:     optional(fields.Objective),
		Assessment:    optional(fields.Assessment),
		Plan:          optional(fields.Plan),
	}
	if err := r.repo.Create(ctx, note); err != nil {
		r.observe("create", err)
		return nil, fmt.Errorf("failed to create clinical note: %w", err)
	}
	r.observe("create", nil)
	return note, nil
}

func (r *Reconciler) observe(mode string, err error) {
	status := "success"
	if err != nil {
		status = "error"
		r.logger.Warn(err, "clinical note save failed", "mode", mode)
	}
	if r.metrics != nil {
		r.metrics.NoteSaves.WithLabelValues(mode, status).Inc()
	}
}

// ParseLegacy splits a combined note into its labeled sections. The first
// occurrence of each label wins.
func ParseLegacy(content string) model.NoteFields {
	matches := legacySection.FindAllStringSubmatchIndex(content, -1)
	sections := make(map[string]string, 4)
	for i, m := range matches {
		label := content[m[2]:m[3]]
		end := len(content)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		if _, seen := sections[label]; seen {
			continue
		}
		sections[label] = strings.TrimSpace(content[m[1]:end])
	}
	return model.NoteFields{
		Subjective: sections["S"],
		Objective:  sections["O"],
		Assessment: sections["A"],
		Plan:       sections["P"],
	}
}

func pick(structured *string, legacy string) string {
	if structured != nil {
		if s := strings.TrimSpace(*structured); s != "" {
			return s
		}
	}
	return legacy
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func isBlank(f model.NoteFields) bool {
	return optional(f.Subjective) == nil && optional(f.Objective) == nil &&
		optional(f.Assessment) == nil && optional(f.Plan) == nil
}
