package workspace

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/confirmation"
	"github.com/jwalitptl/dental-admin/internal/service/workspace"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
	"github.com/jwalitptl/dental-admin/pkg/logger"
)

const (
	warnStaffNotSaved = "appointment confirmed but staff assignments were not saved"
	warnNoteNotSaved  = "appointment updated but the clinical note was not saved"
)

// Engine is the mutation side of the workspace.
type Engine interface {
	ConfirmHold(ctx context.Context, actor model.Actor, patientID, holdID uuid.UUID, form confirmation.ConfirmForm) (*confirmation.ConfirmResult, error)
	CancelHold(ctx context.Context, actor model.Actor, patientID, holdID uuid.UUID) (*model.Snapshot, error)
	CancelAppointment(ctx context.Context, actor model.Actor, patientID, appointmentID uuid.UUID) (*model.Snapshot, error)
	EditAppointment(ctx context.Context, actor model.Actor, patientID, appointmentID uuid.UUID, edit model.AppointmentEdit) (*confirmation.EditResult, error)
}

type SourceResolver interface {
	ForHold(ctx context.Context, hold *model.AppointmentHold) *model.CallSourceInfo
	ForAppointment(ctx context.Context, appt *model.Appointment) *model.CallSourceInfo
}

type NoteLoader interface {
	Load(ctx context.Context, appointmentID uuid.UUID) (*model.LoadedNote, error)
}

// EntryDetail fills the side panels for the selected entry.
type EntryDetail struct {
	Entry  model.TimelineEntry      `json:"entry"`
	Source *model.CallSourceInfo    `json:"source"`
	Note   *model.LoadedNote        `json:"note,omitempty"`
	Staff  []*model.StaffAssignment `json:"staff,omitempty"`
}

type Response struct {
	Workspace   workspace.View     `json:"workspace"`
	Detail      *EntryDetail       `json:"detail,omitempty"`
	Appointment *model.Appointment `json:"appointment,omitempty"`
}

type Handler struct {
	engine   Engine
	store    *workspace.Store
	resolver SourceResolver
	notes    NoteLoader
	staff    repository.StaffAssignmentRepository
	logger   *logger.Logger
}

func NewHandler(
	engine Engine,
	store *workspace.Store,
	resolver SourceResolver,
	notes NoteLoader,
	staff repository.StaffAssignmentRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{
		engine:   engine,
		store:    store,
		resolver: resolver,
		notes:    notes,
		staff:    staff,
		logger:   log.With("workspace-handler"),
	}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	patients := r.Group("/patients/:patientID")
	{
		patients.GET("/workspace", h.GetWorkspace)
		patients.PUT("/workspace/filter", h.SetFilter)
		patients.POST("/workspace/filter/next", h.NextFilter)
		patients.POST("/workspace/filter/prev", h.PrevFilter)
		patients.PUT("/workspace/selection", h.Select)

		patients.POST("/holds/:holdID/confirm", h.ConfirmHold)
		patients.POST("/holds/:holdID/cancel", h.CancelHold)
		patients.POST("/appointments/:appointmentID/cancel", h.CancelAppointment)
		patients.PATCH("/appointments/:appointmentID", h.EditAppointment)
	}
}

func (h *Handler) GetWorkspace(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}

	var ws *workspace.Workspace
	if c.Query("refresh") == "true" {
		ws = h.store.Reload(c.Request.Context(), actor.StaffID, patientID)
	} else {
		ws = h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	}

	if f := c.Query("filter"); f != "" {
		filter, err := model.ParseFilter(f)
		if err != nil {
			httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
			return
		}
		if filter != ws.Filter() {
			ws.SetFilter(filter)
		}
	}
	h.respond(c, http.StatusOK, ws, nil)
}

type filterRequest struct {
	Filter string `json:"filter"`
}

func (h *Handler) SetFilter(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}

	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body")
		return
	}
	filter, err := model.ParseFilter(req.Filter)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	ws.SetFilter(filter)
	h.respond(c, http.StatusOK, ws, nil)
}

func (h *Handler) NextFilter(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	ws.Next()
	h.respond(c, http.StatusOK, ws, nil)
}

func (h *Handler) PrevFilter(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	ws.Prev()
	h.respond(c, http.StatusOK, ws, nil)
}

type selectionRequest struct {
	Kind string    `json:"kind"`
	ID   uuid.UUID `json:"id"`
}

func (h *Handler) Select(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}

	var req selectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.BadRequest(c, "invalid request body")
		return
	}
	kind, err := model.ParseEntryKind(req.Kind)
	if err != nil {
		httputil.RespondWithError(c, apperrors.BadRequest(err.Error(), err))
		return
	}

	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	if !ws.Focus(kind, req.ID) {
		httputil.RespondWithError(c, apperrors.NotFound("entry", nil))
		return
	}
	h.respond(c, http.StatusOK, ws, nil)
}

func (h *Handler) ConfirmHold(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	holdID, ok := pathID(c, "holdID")
	if !ok {
		return
	}

	var form confirmation.ConfirmForm
	if err := c.ShouldBindJSON(&form); err != nil && !errors.Is(err, io.EOF) {
		httputil.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.engine.ConfirmHold(c.Request.Context(), actor, patientID, holdID, form)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ws := h.apply(c, actor, patientID, result.Snapshot)
	if !ws.Reveal(model.EntryKindAppointment, result.Appointment.ID) {
		h.logger.Warn(nil, "confirmed appointment not visible under any filter",
			"appointment_id", result.Appointment.ID.String())
	}

	var warnings []string
	if result.StaffErr != nil {
		warnings = append(warnings, warnStaffNotSaved)
	}
	status := http.StatusCreated
	if result.Reused {
		status = http.StatusOK
	}
	h.respond(c, status, ws, result.Appointment, warnings...)
}

func (h *Handler) CancelHold(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	holdID, ok := pathID(c, "holdID")
	if !ok {
		return
	}

	snap, err := h.engine.CancelHold(c.Request.Context(), actor, patientID, holdID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	ws := h.applyCancel(c, actor, patientID, model.EntryKindHold, holdID, snap)
	h.respond(c, http.StatusOK, ws, nil)
}

func (h *Handler) CancelAppointment(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	appointmentID, ok := pathID(c, "appointmentID")
	if !ok {
		return
	}

	snap, err := h.engine.CancelAppointment(c.Request.Context(), actor, patientID, appointmentID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	ws := h.applyCancel(c, actor, patientID, model.EntryKindAppointment, appointmentID, snap)
	h.respond(c, http.StatusOK, ws, nil)
}

func (h *Handler) EditAppointment(c *gin.Context) {
	actor, patientID, ok := h.session(c)
	if !ok {
		return
	}
	appointmentID, ok := pathID(c, "appointmentID")
	if !ok {
		return
	}

	var edit model.AppointmentEdit
	if err := c.ShouldBindJSON(&edit); err != nil {
		httputil.BadRequest(c, "invalid request body")
		return
	}

	result, err := h.engine.EditAppointment(c.Request.Context(), actor, patientID, appointmentID, edit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	ws := h.apply(c, actor, patientID, result.Snapshot)
	ws.Focus(model.EntryKindAppointment, appointmentID)

	var warnings []string
	if result.NoteErr != nil {
		h.logger.Warn(result.NoteErr, "clinical note not saved", "appointment_id", appointmentID.String())
		warnings = append(warnings, warnNoteNotSaved)
	}
	h.respond(c, http.StatusOK, ws, result.Appointment, warnings...)
}

// apply installs a snapshot returned by a mutation. Holds without a patient
// come back with an empty snapshot, so the session's patient is reloaded.
func (h *Handler) apply(c *gin.Context, actor model.Actor, patientID uuid.UUID, snap *model.Snapshot) *workspace.Workspace {
	if snap == nil || snap.PatientID != patientID {
		return h.store.Reload(c.Request.Context(), actor.StaffID, patientID)
	}
	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	ws.Replace(snap)
	return ws
}

func (h *Handler) applyCancel(c *gin.Context, actor model.Actor, patientID uuid.UUID, kind model.EntryKind, id uuid.UUID, snap *model.Snapshot) *workspace.Workspace {
	if snap == nil || snap.PatientID != patientID {
		return h.store.Reload(c.Request.Context(), actor.StaffID, patientID)
	}
	ws := h.store.Get(c.Request.Context(), actor.StaffID, patientID)
	ws.ApplyCancel(kind, id, snap)
	return ws
}

func (h *Handler) respond(c *gin.Context, status int, ws *workspace.Workspace, appt *model.Appointment, warnings ...string) {
	resp := Response{
		Workspace:   ws.View(),
		Appointment: appt,
	}
	if entry, ok := ws.Selected(); ok {
		resp.Detail = h.detail(c.Request.Context(), entry)
	}
	httputil.RespondWithSuccess(c, status, resp, warnings...)
}

// detail never fails; panels whose data cannot be read are left empty.
func (h *Handler) detail(ctx context.Context, entry model.TimelineEntry) *EntryDetail {
	d := &EntryDetail{Entry: entry}
	if entry.Hold != nil {
		d.Source = h.resolver.ForHold(ctx, entry.Hold)
		return d
	}

	appt := entry.Appointment
	d.Source = h.resolver.ForAppointment(ctx, appt)

	note, err := h.notes.Load(ctx, appt.ID)
	if err != nil {
		h.logger.Warn(err, "failed to load clinical note", "appointment_id", appt.ID.String())
	} else {
		d.Note = note
	}

	staff, err := h.staff.ListByAppointment(ctx, appt.ID)
	if err != nil {
		h.logger.Warn(err, "failed to load staff assignments", "appointment_id", appt.ID.String())
	} else {
		d.Staff = staff
	}
	return d
}

func (h *Handler) session(c *gin.Context) (model.Actor, uuid.UUID, bool) {
	actor, ok := middleware.Actor(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return model.Actor{}, uuid.Nil, false
	}
	patientID, ok := pathID(c, "patientID")
	if !ok {
		return model.Actor{}, uuid.Nil, false
	}
	return actor, patientID, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
