package confirmation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/internal/service/event"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
	"github.com/jwalitptl/dental-admin/pkg/tracing"
	"github.com/jwalitptl/dental-admin/pkg/validator"
)

// NoteSaver persists SOAP edits. It is satisfied by note.Reconciler.
type NoteSaver interface {
	Save(ctx context.Context, appointmentID, authorID uuid.UUID, fields model.NoteFields) (*model.ClinicalNote, error)
}

// ConfirmForm is what the operator submits to turn a hold into an appointment.
// Empty fields fall back to the hold's own values.
type ConfirmForm struct {
	BoxID     *uuid.UUID                   `json:"box_id,omitempty"`
	ServiceID *uuid.UUID                   `json:"service_id,omitempty"`
	Notes     *string                      `json:"notes,omitempty" validate:"omitempty,max=2000"`
	Staff     []model.StaffAssignmentInput `json:"staff,omitempty" validate:"omitempty,dive"`
}

type ConfirmResult struct {
	Appointment *model.Appointment
	Snapshot    *model.Snapshot
	// StaffErr is set when the appointment was created but its staff could not
	// be stored. The confirmation itself stands.
	StaffErr error
	// Reused is set when an earlier attempt had already created the appointment.
	Reused bool
}

type EditResult struct {
	Appointment *model.Appointment
	Note        *model.ClinicalNote
	Snapshot    *model.Snapshot
	// NoteErr is set when the SOAP note could not be stored; the rest of the
	// edit was applied.
	NoteErr error
}

type Engine struct {
	appointments repository.AppointmentRepository
	holds        repository.HoldRepository
	staff        repository.StaffAssignmentRepository
	reference    repository.ReferenceRepository
	notes        NoteSaver
	events       event.Emitter
	validate     *validator.Validator
	logger       *logger.Logger
	metrics      *metrics.Metrics
	tracer       trace.Tracer
	now          func() time.Time
}

type Deps struct {
	Appointments repository.AppointmentRepository
	Holds        repository.HoldRepository
	Staff        repository.StaffAssignmentRepository
	Reference    repository.ReferenceRepository
	Notes        NoteSaver
	Events       event.Emitter
	Logger       *logger.Logger
	Metrics      *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewEngine(d Deps) *Engine {
	now := d.Now
	if now == nil {
		now = time.Now
	}
	return &Engine{
		appointments: d.Appointments,
		holds:        d.Holds,
		staff:        d.Staff,
		reference:    d.Reference,
		notes:        d.Notes,
		events:       d.Events,
		validate:     validator.New(),
		logger:       d.Logger.With("confirmation"),
		metrics:      d.Metrics,
		tracer:       tracing.Tracer("confirmation"),
		now:          now,
	}
}

// Snapshot reloads the appointments and holds of a patient. Read failures are
// logged and leave the affected collection empty.
func (e *Engine) Snapshot(ctx context.Context, patientID uuid.UUID) *model.Snapshot {
	snap := &model.Snapshot{
		PatientID:    patientID,
		Appointments: []*model.Appointment{},
		Holds:        []*model.AppointmentHold{},
	}
	if patientID == uuid.Nil {
		return snap
	}

	appts, err := e.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		e.logger.Warn(err, "failed to list appointments", "patient_id", patientID.String())
	} else if appts != nil {
		snap.Appointments = appts
	}

	holds, err := e.holds.ListByPatient(ctx, patientID)
	if err != nil {
		e.logger.Warn(err, "failed to list holds", "patient_id", patientID.String())
	} else if holds != nil {
		snap.Holds = holds
	}
	return snap
}

func (e *Engine) CancelHold(ctx context.Context, actor model.Actor, patientID, holdID uuid.UUID) (_ *model.Snapshot, err error) {
	ctx, span := e.startSpan(ctx, "CancelHold", actor, attribute.String("hold.id", holdID.String()))
	defer func() { endSpan(span, err) }()
	defer func() { e.countCancel("hold", err) }()

	if !actor.CanManageAppointments {
		return nil, apperrors.Forbidden("not allowed to manage appointments")
	}

	hold, err := e.loadHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(actor, patientID, hold.ClinicID, hold.PatientID, "hold"); err != nil {
		return nil, err
	}
	if hold.Status != model.HoldStatusHeld {
		return nil, apperrors.Conflict(fmt.Sprintf("hold is %s, only held holds can be cancelled", hold.Status))
	}
	if !hold.StartTime.After(e.now()) {
		return nil, apperrors.Conflict("hold start time has already passed")
	}
	// A confirmation that failed after the insert leaves the hold held.
	existing, err := e.findBySourceHold(ctx, hold.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict("hold already has an appointment, confirm it again to finish")
	}

	status := model.HoldStatusCancelled
	if err := e.holds.Update(ctx, hold.ID, &model.HoldUpdate{Status: &status}); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to cancel hold: %w", err))
	}

	e.emit(ctx, model.EventHoldCancelled, hold.ID, event.HoldCancelled{
		HoldID:      hold.ID,
		ClinicID:    hold.ClinicID,
		CancelledBy: actor.StaffID,
	})
	return e.Snapshot(ctx, patientOf(hold)), nil
}

func (e *Engine) CancelAppointment(ctx context.Context, actor model.Actor, patientID, appointmentID uuid.UUID) (_ *model.Snapshot, err error) {
	ctx, span := e.startSpan(ctx, "CancelAppointment", actor, attribute.String("appointment.id", appointmentID.String()))
	defer func() { endSpan(span, err) }()
	defer func() { e.countCancel("appointment", err) }()

	if !actor.CanManageAppointments {
		return nil, apperrors.Forbidden("not allowed to manage appointments")
	}

	appt, err := e.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(actor, patientID, appt.ClinicID, &appt.PatientID, "appointment"); err != nil {
		return nil, err
	}
	if appt.Status.IsTerminal() {
		return nil, apperrors.Conflict("appointment is already cancelled")
	}
	if !appt.StartTime.After(e.now()) {
		return nil, apperrors.Conflict("appointment start time has already passed")
	}

	status := model.AppointmentStatusCancelled
	if err := e.appointments.Update(ctx, appt.ID, &model.AppointmentUpdate{Status: &status}); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to cancel appointment: %w", err))
	}

	e.emit(ctx, model.EventAppointmentCancelled, appt.ID, event.AppointmentCancelled{
		AppointmentID: appt.ID,
		ClinicID:      appt.ClinicID,
		PatientID:     appt.PatientID,
		CancelledBy:   actor.StaffID,
	})
	return e.Snapshot(ctx, appt.PatientID), nil
}

// ConfirmHold promotes a held hold into a confirmed appointment. The hold is
// only marked used once the appointment exists, so a failed insert leaves it
// held. Staff assignment comes last and its failure does not undo anything.
func (e *Engine) ConfirmHold(ctx context.Context, actor model.Actor, patientID, holdID uuid.UUID, form ConfirmForm) (_ *ConfirmResult, err error) {
	ctx, span := e.startSpan(ctx, "ConfirmHold", actor, attribute.String("hold.id", holdID.String()))
	defer func() { endSpan(span, err) }()
	if e.metrics != nil {
		timer := prometheus.NewTimer(e.metrics.ConfirmationLatency)
		defer timer.ObserveDuration()
	}
	outcome := "error"
	defer func() {
		if e.metrics != nil {
			e.metrics.Confirmations.WithLabelValues(outcome).Inc()
		}
	}()

	if !actor.CanManageAppointments {
		outcome = "forbidden"
		return nil, apperrors.Forbidden("not allowed to manage appointments")
	}
	if err := e.validate.Struct(form); err != nil {
		outcome = "invalid"
		return nil, apperrors.BadRequest("invalid confirmation form: "+err.Error(), err)
	}
	if len(form.Staff) > 0 && !actor.CanAssignStaff {
		outcome = "forbidden"
		return nil, apperrors.Forbidden("not allowed to assign staff")
	}
	roles, err := resolveRoles(form.Staff)
	if err != nil {
		outcome = "invalid"
		return nil, err
	}

	hold, err := e.loadHold(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(actor, patientID, hold.ClinicID, hold.PatientID, "hold"); err != nil {
		outcome = "not_found"
		return nil, err
	}

	// A previous attempt may have created the appointment already.
	existing, err := e.findBySourceHold(ctx, hold.ID)
	if err != nil {
		return nil, err
	}

	switch {
	case hold.Status == model.HoldStatusUsed && existing != nil:
		outcome = "reused"
		return &ConfirmResult{
			Appointment: existing,
			Snapshot:    e.Snapshot(ctx, existing.PatientID),
			Reused:      true,
		}, nil
	case hold.Status != model.HoldStatusHeld:
		outcome = "conflict"
		return nil, apperrors.Conflict(fmt.Sprintf("hold is %s, only held holds can be confirmed", hold.Status))
	case existing == nil && !hold.IsActive(e.now()):
		outcome = "conflict"
		return nil, apperrors.Conflict("hold has expired")
	case hold.PatientID == nil:
		outcome = "conflict"
		return nil, apperrors.Conflict("hold is not linked to a patient")
	}

	if len(roles) > 0 {
		if err := e.checkRoster(ctx, hold.ClinicID, roles); err != nil {
			outcome = "invalid"
			return nil, err
		}
	}
	if err := e.checkFormReferences(ctx, hold.ClinicID, form); err != nil {
		outcome = "invalid"
		return nil, err
	}

	boxID := firstID(form.BoxID, hold.BoxID)
	serviceID := firstID(form.ServiceID, hold.SuggestedServiceID)
	notes := hold.Notes
	if form.Notes != nil && strings.TrimSpace(*form.Notes) != "" {
		notes = strings.TrimSpace(*form.Notes)
	}
	category := e.serviceLabel(ctx, serviceID)

	if err := e.holds.Update(ctx, hold.ID, &model.HoldUpdate{BoxID: boxID, ServiceID: serviceID, Notes: &notes}); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to update hold: %w", err))
	}

	appt := existing
	reused := existing != nil
	if appt == nil {
		appt = &model.Appointment{
			ClinicID:        hold.ClinicID,
			PatientID:       *hold.PatientID,
			BoxID:           boxID,
			Status:          model.AppointmentStatusConfirmed,
			StartTime:       hold.StartTime,
			EndTime:         hold.EndTime,
			ServiceID:       serviceID,
			ServiceCategory: category,
			Notes:           notes,
			PublicRef:       publicRef(hold),
			Source:          model.AppointmentSourceManual,
			SourceHoldID:    &hold.ID,
		}
		if err := e.appointments.Create(ctx, appt); err != nil {
			outcome = "insert_failed"
			return nil, apperrors.Internal(fmt.Errorf("failed to create appointment: %w", err))
		}
	}

	used := model.HoldStatusUsed
	if err := e.holds.Update(ctx, hold.ID, &model.HoldUpdate{Status: &used}); err != nil {
		e.logger.Error(err, "appointment created but hold not marked used",
			"hold_id", hold.ID.String(), "appointment_id", appt.ID.String())
		return nil, apperrors.Internal(fmt.Errorf("failed to mark hold used: %w", err))
	}

	var staffErr error
	if len(roles) > 0 {
		staffErr = e.assignStaff(ctx, appt.ID, roles)
	}

	e.emit(ctx, model.EventHoldConfirmed, hold.ID, event.HoldConfirmed{
		HoldID:        hold.ID,
		AppointmentID: appt.ID,
		ClinicID:      appt.ClinicID,
		PatientID:     appt.PatientID,
		BoxID:         appt.BoxID,
		ServiceID:     appt.ServiceID,
		ConfirmedBy:   actor.StaffID,
		StaffAssigned: len(roles) > 0 && staffErr == nil,
	})

	outcome = "confirmed"
	if staffErr != nil {
		outcome = "staff_failed"
	}
	return &ConfirmResult{
		Appointment: appt,
		Snapshot:    e.Snapshot(ctx, appt.PatientID),
		StaffErr:    staffErr,
		Reused:      reused,
	}, nil
}

// EditAppointment applies scheduling changes when the actor may manage
// appointments and always accepts SOAP edits. Scheduling fields sent without
// that capability are ignored, unless they are all that was sent.
func (e *Engine) EditAppointment(ctx context.Context, actor model.Actor, patientID, appointmentID uuid.UUID, edit model.AppointmentEdit) (_ *EditResult, err error) {
	ctx, span := e.startSpan(ctx, "EditAppointment", actor, attribute.String("appointment.id", appointmentID.String()))
	defer func() { endSpan(span, err) }()

	if !edit.HasScheduling() && edit.SOAP == nil {
		return nil, apperrors.BadRequest("nothing to update", nil)
	}
	if edit.HasScheduling() && !actor.CanManageAppointments && edit.SOAP == nil {
		return nil, apperrors.Forbidden("not allowed to manage appointments")
	}

	appt, err := e.loadAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if err := checkScope(actor, patientID, appt.ClinicID, &appt.PatientID, "appointment"); err != nil {
		return nil, err
	}

	var changed []string
	if edit.HasScheduling() && actor.CanManageAppointments {
		update, fields, err := e.buildUpdate(ctx, appt, edit)
		if err != nil {
			return nil, err
		}
		if !update.IsEmpty() {
			if err := e.appointments.Update(ctx, appt.ID, update); err != nil {
				return nil, apperrors.Internal(fmt.Errorf("failed to update appointment: %w", err))
			}
			changed = fields
		}
	} else if edit.HasScheduling() {
		e.logger.Debug("ignoring scheduling fields without capability",
			"appointment_id", appt.ID.String(), "staff_id", actor.StaffID.String())
	}

	result := &EditResult{}
	if edit.SOAP != nil {
		saved, err := e.notes.Save(ctx, appt.ID, actor.StaffID, *edit.SOAP)
		if err != nil {
			result.NoteErr = err
		} else {
			result.Note = saved
			if saved != nil {
				changed = append(changed, "soap")
			}
		}
	}

	if len(changed) > 0 {
		e.emit(ctx, model.EventAppointmentUpdated, appt.ID, event.AppointmentUpdated{
			AppointmentID: appt.ID,
			PatientID:     appt.PatientID,
			UpdatedBy:     actor.StaffID,
			Fields:        changed,
		})
	}

	result.Snapshot = e.Snapshot(ctx, appt.PatientID)
	result.Appointment = appt
	for _, a := range result.Snapshot.Appointments {
		if a.ID == appt.ID {
			result.Appointment = a
			break
		}
	}
	return result, nil
}

func (e *Engine) buildUpdate(ctx context.Context, appt *model.Appointment, edit model.AppointmentEdit) (*model.AppointmentUpdate, []string, error) {
	if appt.Status.IsTerminal() {
		return nil, nil, apperrors.Conflict("cancelled appointments cannot be edited")
	}

	update := &model.AppointmentUpdate{}
	var fields []string

	if edit.Status != nil && *edit.Status != appt.Status {
		switch {
		case !edit.Status.Valid():
			return nil, nil, apperrors.BadRequest(fmt.Sprintf("unknown status %q", *edit.Status), nil)
		case *edit.Status == model.AppointmentStatusCancelled:
			return nil, nil, apperrors.BadRequest("use cancel to cancel an appointment", nil)
		}
		update.Status = edit.Status
		fields = append(fields, "status")
	}

	start, end := appt.StartTime, appt.EndTime
	if edit.StartTime != nil {
		start = *edit.StartTime
	}
	if edit.EndTime != nil {
		end = *edit.EndTime
	}
	if !end.After(start) {
		return nil, nil, apperrors.BadRequest("end time must be after start time", nil)
	}
	if edit.StartTime != nil && !edit.StartTime.Equal(appt.StartTime) {
		update.StartTime = &start
		fields = append(fields, "start_time")
	}
	if edit.EndTime != nil && !edit.EndTime.Equal(appt.EndTime) {
		update.EndTime = &end
		fields = append(fields, "end_time")
	}

	if edit.ServiceID != nil && (appt.ServiceID == nil || *appt.ServiceID != *edit.ServiceID) {
		update.ServiceID = edit.ServiceID
		update.ServiceCategory = e.serviceLabel(ctx, edit.ServiceID)
		fields = append(fields, "service_id")
	}
	return update, fields, nil
}

type resolvedRole struct {
	staffID uuid.UUID
	label   string
}

func resolveRoles(inputs []model.StaffAssignmentInput) ([]resolvedRole, error) {
	seen := make(map[uuid.UUID]bool, len(inputs))
	roles := make([]resolvedRole, 0, len(inputs))
	for _, in := range inputs {
		if seen[in.StaffID] {
			return nil, apperrors.BadRequest(fmt.Sprintf("staff %s listed twice", in.StaffID), nil)
		}
		seen[in.StaffID] = true

		label, err := model.ResolveRoleLabel(in.Role, in.CustomRole)
		if err != nil {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		roles = append(roles, resolvedRole{staffID: in.StaffID, label: label})
	}
	return roles, nil
}

func (e *Engine) checkRoster(ctx context.Context, clinicID uuid.UUID, roles []resolvedRole) error {
	roster, err := e.reference.ListStaff(ctx, clinicID)
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to load staff roster: %w", err))
	}
	onRoster := make(map[uuid.UUID]bool, len(roster))
	for _, s := range roster {
		onRoster[s.ID] = true
	}
	for _, r := range roles {
		if !onRoster[r.staffID] {
			return apperrors.BadRequest(fmt.Sprintf("staff %s is not on the clinic roster", r.staffID), nil)
		}
	}
	return nil
}

// checkFormReferences makes sure a box or service picked on the form belongs
// to the hold's clinic. Values inherited from the hold are not rechecked.
func (e *Engine) checkFormReferences(ctx context.Context, clinicID uuid.UUID, form ConfirmForm) error {
	if form.BoxID != nil {
		boxes, err := e.reference.ListBoxes(ctx, clinicID)
		if err != nil {
			return apperrors.Internal(fmt.Errorf("failed to load boxes: %w", err))
		}
		found := false
		for _, b := range boxes {
			if b.ID == *form.BoxID && b.ClinicID == clinicID {
				found = true
				break
			}
		}
		if !found {
			return apperrors.BadRequest(fmt.Sprintf("box %s does not belong to the clinic", *form.BoxID), nil)
		}
	}

	if form.ServiceID != nil {
		svc, err := e.reference.GetService(ctx, *form.ServiceID)
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return apperrors.BadRequest(fmt.Sprintf("service %s does not exist", *form.ServiceID), err)
		case err != nil:
			return apperrors.Internal(fmt.Errorf("failed to get service: %w", err))
		case svc.ClinicID != clinicID:
			return apperrors.BadRequest(fmt.Sprintf("service %s does not belong to the clinic", *form.ServiceID), nil)
		}
	}
	return nil
}

// assignStaff tries the batch call first and falls back to one upsert per row.
func (e *Engine) assignStaff(ctx context.Context, appointmentID uuid.UUID, roles []resolvedRole) error {
	rows := make([]model.StaffAssignment, 0, len(roles))
	for _, r := range roles {
		rows = append(rows, model.StaffAssignment{AppointmentID: appointmentID, StaffID: r.staffID, Role: r.label})
	}

	batchErr := e.staff.AssignBatch(ctx, appointmentID, rows)
	e.countStaff("batch", batchErr)
	if batchErr == nil {
		return nil
	}
	e.logger.Warn(batchErr, "batch staff assignment failed, falling back to upserts",
		"appointment_id", appointmentID.String())

	var failed []error
	for i := range rows {
		if err := e.staff.Upsert(ctx, &rows[i]); err != nil {
			failed = append(failed, fmt.Errorf("staff %s: %w", rows[i].StaffID, err))
		}
	}
	if len(failed) == 0 {
		e.countStaff("upsert", nil)
		return nil
	}
	err := fmt.Errorf("failed to assign staff to appointment %s: %w", appointmentID, errors.Join(failed...))
	e.countStaff("upsert", err)
	e.logger.Error(err, "staff assignment left incomplete", "appointment_id", appointmentID.String())
	return err
}

// serviceLabel looks up the category label of a service. A failed lookup is
// logged and yields no label.
func (e *Engine) serviceLabel(ctx context.Context, serviceID *uuid.UUID) *string {
	if serviceID == nil {
		return nil
	}
	svc, err := e.reference.GetService(ctx, *serviceID)
	if err != nil {
		e.logger.Warn(err, "service lookup failed, continuing without label", "service_id", serviceID.String())
		return nil
	}
	label := svc.Label()
	if label == "" {
		return nil
	}
	return &label
}

func (e *Engine) findBySourceHold(ctx context.Context, holdID uuid.UUID) (*model.Appointment, error) {
	appt, err := e.appointments.FindBySourceHold(ctx, holdID)
	switch {
	case err == nil:
		return appt, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, nil
	default:
		return nil, apperrors.Internal(fmt.Errorf("failed to look up appointment for hold: %w", err))
	}
}

// checkScope reports entities outside the actor's clinic, or belonging to
// another patient than patientID, as not found.
func checkScope(actor model.Actor, patientID, clinicID uuid.UUID, entityPatient *uuid.UUID, resource string) error {
	if clinicID != actor.ClinicID {
		return apperrors.NotFound(resource, nil)
	}
	if entityPatient != nil && *entityPatient != patientID {
		return apperrors.NotFound(resource, nil)
	}
	return nil
}

func (e *Engine) loadHold(ctx context.Context, id uuid.UUID) (*model.AppointmentHold, error) {
	hold, err := e.holds.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("hold", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get hold: %w", err))
	}
	return hold, nil
}

func (e *Engine) loadAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	appt, err := e.appointments.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to get appointment: %w", err))
	}
	return appt, nil
}

func (e *Engine) emit(ctx context.Context, eventType string, aggregateID uuid.UUID, payload interface{}) {
	if e.events == nil {
		return
	}
	if err := e.events.Emit(ctx, eventType, aggregateID, payload); err != nil {
		e.logger.Warn(err, "failed to record event", "event_type", eventType, "aggregate_id", aggregateID.String())
	}
}

func (e *Engine) countCancel(entity string, err error) {
	if e.metrics == nil {
		return
	}
	outcome := "cancelled"
	if err != nil {
		outcome = codeName(apperrors.CodeOf(err))
	}
	e.metrics.Cancellations.WithLabelValues(entity, outcome).Inc()
}

func (e *Engine) countStaff(strategy string, err error) {
	if e.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.StaffAssignments.WithLabelValues(strategy, status).Inc()
}

func (e *Engine) startSpan(ctx context.Context, op string, actor model.Actor, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String("actor.staff_id", actor.StaffID.String()),
		attribute.Bool("actor.can_manage_appointments", actor.CanManageAppointments),
		attribute.Bool("actor.can_assign_staff", actor.CanAssignStaff),
	)
	return e.tracer.Start(ctx, "confirmation."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func codeName(code apperrors.ErrorCode) string {
	switch code {
	case apperrors.ErrNotFound:
		return "not_found"
	case apperrors.ErrBadRequest:
		return "bad_request"
	case apperrors.ErrForbidden:
		return "forbidden"
	case apperrors.ErrConflict:
		return "conflict"
	}
	return "error"
}

func patientOf(h *model.AppointmentHold) uuid.UUID {
	if h.PatientID == nil {
		return uuid.Nil
	}
	return *h.PatientID
}

func firstID(preferred, fallback *uuid.UUID) *uuid.UUID {
	if preferred != nil && *preferred != uuid.Nil {
		id := *preferred
		return &id
	}
	if fallback != nil {
		id := *fallback
		return &id
	}
	return nil
}

// publicRef keeps the hold's reference, or generates one like "CITA-1A2B3C4D".
func publicRef(h *model.AppointmentHold) string {
	if h.PublicRef != nil && strings.TrimSpace(*h.PublicRef) != "" {
		return *h.PublicRef
	}
	return "CITA-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
