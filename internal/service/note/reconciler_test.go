package note

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/repotest"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

func strPtr(s string) *string { return &s }

func newReconciler(repo *repotest.Notes) *Reconciler {
	return NewReconciler(repo, logger.Nop(), metrics.New("test", nil))
}

func TestParseLegacy(t *testing.T) {
	got := ParseLegacy("S: dolor en molar\nO: caries oclusal\nA: caries\nP: empaste")
	assert.Equal(t, model.NoteFields{
		Subjective: "dolor en molar",
		Objective:  "caries oclusal",
		Assessment: "caries",
		Plan:       "empaste",
	}, got)

	inline := ParseLegacy("S: sensibilidad O: sin hallazgos P: control en 6 meses")
	assert.Equal(t, "sensibilidad", inline.Subjective)
	assert.Equal(t, "sin hallazgos", inline.Objective)
	assert.Empty(t, inline.Assessment)
	assert.Equal(t, "control en 6 meses", inline.Plan)

	assert.Equal(t, model.NoteFields{}, ParseLegacy("texto libre sin secciones"))
}

func TestLoadEmpty(t *testing.T) {
	r := newReconciler(&repotest.Notes{})
	loaded, err := r.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, loaded.NoteID)
	assert.Equal(t, model.NoteFields{}, loaded.NoteFields)
}

func TestLoadPrefersStructuredAndFillsFromLegacy(t *testing.T) {
	repo := &repotest.Notes{}
	apptID := uuid.New()
	author := uuid.New()
	repo.Add(&model.ClinicalNote{AppointmentID: apptID, AuthorID: uuid.New(), Subjective: strPtr("old")})
	newest := repo.Add(&model.ClinicalNote{
		AppointmentID: apptID,
		AuthorID:      author,
		Subjective:    strPtr("estructurado"),
		Objective:     strPtr("  "),
		Content:       strPtr("S: legado\nO: placa\nA: gingivitis\nP: limpieza"),
	})

	loaded, err := newReconciler(repo).Load(context.Background(), apptID)
	require.NoError(t, err)

	assert.Equal(t, "estructurado", loaded.Subjective)
	assert.Equal(t, "placa", loaded.Objective)
	assert.Equal(t, "gingivitis", loaded.Assessment)
	assert.Equal(t, "limpieza", loaded.Plan)
	assert.Equal(t, newest.ID, *loaded.NoteID)
	assert.Equal(t, author, *loaded.AuthorID)
}

func TestSaveUpdatesOwnNote(t *testing.T) {
	repo := &repotest.Notes{}
	apptID := uuid.New()
	author := uuid.New()
	existing := repo.Add(&model.ClinicalNote{AppointmentID: apptID, AuthorID: author, Subjective: strPtr("a")})

	saved, err := newReconciler(repo).Save(context.Background(), apptID, author, model.NoteFields{Subjective: "b", Plan: "p"})
	require.NoError(t, err)

	assert.Equal(t, existing.ID, saved.ID)
	notes := repo.For(apptID)
	require.Len(t, notes, 1)
	assert.Equal(t, "b", *notes[0].Subjective)
	assert.Equal(t, "p", *notes[0].Plan)
}

func TestSaveOwnNoteDropsLegacyText(t *testing.T) {
	repo := &repotest.Notes{}
	apptID := uuid.New()
	author := uuid.New()
	repo.Add(&model.ClinicalNote{
		AppointmentID: apptID,
		AuthorID:      author,
		Content:       strPtr("S: viejo\nP: legado"),
	})
	r := newReconciler(repo)

	_, err := r.Save(context.Background(), apptID, author, model.NoteFields{Subjective: "nuevo"})
	require.NoError(t, err)

	notes := repo.For(apptID)
	require.Len(t, notes, 1)
	assert.Nil(t, notes[0].Content)

	loaded, err := r.Load(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, "nuevo", loaded.Subjective)
	assert.Empty(t, loaded.Plan)
}

// Two notes exist, the newer by staffX. staffY saving must add a third note
// and leave staffX's untouched.
func TestSaveByDifferentAuthorCreatesNote(t *testing.T) {
	repo := &repotest.Notes{}
	apptID := uuid.New()
	staffX, staffY := uuid.New(), uuid.New()
	repo.Add(&model.ClinicalNote{AppointmentID: apptID, AuthorID: staffY, Plan: strPtr("first")})
	newer := repo.Add(&model.ClinicalNote{AppointmentID: apptID, AuthorID: staffX, Plan: strPtr("by x")})

	saved, err := newReconciler(repo).Save(context.Background(), apptID, staffY, model.NoteFields{Plan: "by y"})
	require.NoError(t, err)

	notes := repo.For(apptID)
	require.Len(t, notes, 3)
	assert.NotEqual(t, newer.ID, saved.ID)
	assert.Equal(t, staffY, saved.AuthorID)
	for _, n := range notes {
		if n.ID == newer.ID {
			assert.Equal(t, "by x", *n.Plan)
		}
	}

	latest, err := repo.Latest(context.Background(), apptID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, latest.ID)
}

func TestSaveBlankWithoutNoteIsNoop(t *testing.T) {
	repo := &repotest.Notes{}
	saved, err := newReconciler(repo).Save(context.Background(), uuid.New(), uuid.New(), model.NoteFields{Plan: "  "})
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestSaveFailureIsReturned(t *testing.T) {
	repo := &repotest.Notes{CreateErr: errors.New("write failed")}
	_, err := newReconciler(repo).Save(context.Background(), uuid.New(), uuid.New(), model.NoteFields{Subjective: "x"})
	assert.ErrorContains(t, err, "failed to create clinical note")
}
