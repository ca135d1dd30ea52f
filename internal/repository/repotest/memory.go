// Package repotest provides in-memory repositories for service tests. Each
// store has optional error hooks that run before the real behaviour.
package repotest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type Appointments struct {
	mu    sync.Mutex
	items []*model.Appointment

	ListErr   error
	CreateErr error
	UpdateErr error
}

func (s *Appointments) Add(a *model.Appointment) *model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.items = append(s.items, a)
	return a
}

func (s *Appointments) All() []*model.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Appointment, 0, len(s.items))
	for _, a := range s.items {
		c := *a
		out = append(out, &c)
	}
	return out
}

func (s *Appointments) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []*model.Appointment
	for _, a := range s.All() {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

func (s *Appointments) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	for _, a := range s.All() {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Appointments) FindBySourceHold(ctx context.Context, holdID uuid.UUID) (*model.Appointment, error) {
	for _, a := range s.All() {
		if a.SourceHoldID != nil && *a.SourceHoldID == holdID {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Appointments) Create(ctx context.Context, a *model.Appointment) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	c := *a
	s.Add(&c)
	return nil
}

func (s *Appointments) Update(ctx context.Context, id uuid.UUID, u *model.AppointmentUpdate) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.items {
		if a.ID != id {
			continue
		}
		if u.Status != nil {
			a.Status = *u.Status
		}
		if u.StartTime != nil {
			a.StartTime = *u.StartTime
		}
		if u.EndTime != nil {
			a.EndTime = *u.EndTime
		}
		if u.ServiceID != nil {
			sid := *u.ServiceID
			a.ServiceID = &sid
		}
		if u.ServiceCategory != nil {
			cat := *u.ServiceCategory
			a.ServiceCategory = &cat
		}
		return nil
	}
	return repository.ErrNotFound
}

type Holds struct {
	mu    sync.Mutex
	items []*model.AppointmentHold

	ListErr error
	GetErr  error
	// UpdateErr, when set, decides per update whether it fails.
	UpdateErr func(update *model.HoldUpdate) error
}

func (s *Holds) Add(h *model.AppointmentHold) *model.AppointmentHold {
	s.mu.Lock()
	defer s.mu.Unlock()
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	s.items = append(s.items, h)
	return h
}

func (s *Holds) ByID(id uuid.UUID) *model.AppointmentHold {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.items {
		if h.ID == id {
			c := *h
			return &c
		}
	}
	return nil
}

func (s *Holds) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentHold, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.AppointmentHold
	for _, h := range s.items {
		if h.PatientID != nil && *h.PatientID == patientID {
			c := *h
			out = append(out, &c)
		}
	}
	return out, nil
}

func (s *Holds) Get(ctx context.Context, id uuid.UUID) (*model.AppointmentHold, error) {
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	if h := s.ByID(id); h != nil {
		return h, nil
	}
	return nil, repository.ErrNotFound
}

func (s *Holds) Update(ctx context.Context, id uuid.UUID, u *model.HoldUpdate) error {
	if s.UpdateErr != nil {
		if err := s.UpdateErr(u); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, h := range s.items {
		if h.ID != id {
			continue
		}
		if u.Status != nil {
			h.Status = *u.Status
		}
		if u.BoxID != nil {
			b := *u.BoxID
			h.BoxID = &b
		}
		if u.ServiceID != nil {
			sid := *u.ServiceID
			h.SuggestedServiceID = &sid
		}
		if u.Notes != nil {
			h.Notes = *u.Notes
		}
		return nil
	}
	return repository.ErrNotFound
}

type StaffAssignments struct {
	mu    sync.Mutex
	items []model.StaffAssignment

	BatchErr  error
	UpsertErr error
	ListErr   error
}

func (s *StaffAssignments) For(appointmentID uuid.UUID) []model.StaffAssignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.StaffAssignment
	for _, a := range s.items {
		if a.AppointmentID == appointmentID {
			out = append(out, a)
		}
	}
	return out
}

func (s *StaffAssignments) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*model.StaffAssignment, error) {
	if s.ListErr != nil {
		return nil, s.ListErr
	}
	var out []*model.StaffAssignment
	for _, a := range s.For(appointmentID) {
		a := a
		out = append(out, &a)
	}
	return out, nil
}

func (s *StaffAssignments) AssignBatch(ctx context.Context, appointmentID uuid.UUID, assignments []model.StaffAssignment) error {
	if s.BatchErr != nil {
		return s.BatchErr
	}
	for i := range assignments {
		s.upsert(assignments[i])
	}
	return nil
}

func (s *StaffAssignments) Upsert(ctx context.Context, a *model.StaffAssignment) error {
	if s.UpsertErr != nil {
		return s.UpsertErr
	}
	s.upsert(*a)
	return nil
}

func (s *StaffAssignments) upsert(a model.StaffAssignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].AppointmentID == a.AppointmentID && s.items[i].StaffID == a.StaffID {
			s.items[i].Role = a.Role
			return
		}
	}
	s.items = append(s.items, a)
}

type Calls struct {
	Items map[uuid.UUID]*model.Call
	Err   error
}

func (s *Calls) GetCall(ctx context.Context, id uuid.UUID) (*model.Call, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if c, ok := s.Items[id]; ok {
		return c, nil
	}
	return nil, repository.ErrNotFound
}

type CallLogs struct {
	ByCall map[uuid.UUID]*model.CallLog
	Err    error
}

func (s *CallLogs) GetCallLog(ctx context.Context, callID uuid.UUID, externalCallID *string) (*model.CallLog, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if l, ok := s.ByCall[callID]; ok {
		return l, nil
	}
	return nil, repository.ErrNotFound
}

type Reference struct {
	Services []*model.Service
	Boxes    []*model.Box
	Staff    []*model.Staff

	ServiceErr error
	BoxErr     error
	StaffErr   error
}

func (s *Reference) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	if s.ServiceErr != nil {
		return nil, s.ServiceErr
	}
	return s.Services, nil
}

func (s *Reference) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	if s.ServiceErr != nil {
		return nil, s.ServiceErr
	}
	for _, svc := range s.Services {
		if svc.ID == id {
			return svc, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *Reference) ListBoxes(ctx context.Context, clinicID uuid.UUID) ([]*model.Box, error) {
	if s.BoxErr != nil {
		return nil, s.BoxErr
	}
	return s.Boxes, nil
}

func (s *Reference) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	if s.StaffErr != nil {
		return nil, s.StaffErr
	}
	return s.Staff, nil
}

type Notes struct {
	mu    sync.Mutex
	items []*model.ClinicalNote
	clock time.Time

	CreateErr error
	UpdateErr error
}

// Add stores a note; notes added later are newer.
func (s *Notes) Add(n *model.ClinicalNote) *model.ClinicalNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if s.clock.IsZero() {
		s.clock = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	s.clock = s.clock.Add(time.Minute)
	n.CreatedAt = s.clock
	s.items = append(s.items, n)
	return n
}

func (s *Notes) For(appointmentID uuid.UUID) []*model.ClinicalNote {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ClinicalNote
	for _, n := range s.items {
		if n.AppointmentID == appointmentID {
			c := *n
			out = append(out, &c)
		}
	}
	return out
}

func (s *Notes) Latest(ctx context.Context, appointmentID uuid.UUID) (*model.ClinicalNote, error) {
	notes := s.For(appointmentID)
	if len(notes) == 0 {
		return nil, repository.ErrNotFound
	}
	latest := notes[0]
	for _, n := range notes[1:] {
		if n.CreatedAt.After(latest.CreatedAt) {
			latest = n
		}
	}
	return latest, nil
}

func (s *Notes) Create(ctx context.Context, n *model.ClinicalNote) error {
	if s.CreateErr != nil {
		return s.CreateErr
	}
	n.ID = uuid.New()
	c := *n
	s.Add(&c)
	n.CreatedAt = c.CreatedAt
	return nil
}

func (s *Notes) Update(ctx context.Context, n *model.ClinicalNote) error {
	if s.UpdateErr != nil {
		return s.UpdateErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.items {
		if existing.ID == n.ID && existing.AuthorID == n.AuthorID {
			existing.Subjective = n.Subjective
			existing.Objective = n.Objective
			existing.Assessment = n.Assessment
			existing.Plan = n.Plan
			existing.Content = n.Content
			return nil
		}
	}
	return repository.ErrNotFound
}

type Outbox struct {
	mu     sync.Mutex
	Events []*model.OutboxEvent
	Err    error
}

func (s *Outbox) Types() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, e := range s.Events {
		out = append(out, e.EventType)
	}
	return out
}

func (s *Outbox) Create(ctx context.Context, e *model.OutboxEvent) error {
	if s.Err != nil {
		return s.Err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = uuid.New()
	e.Status = model.OutboxStatusPending
	s.Events = append(s.Events, e)
	return nil
}

func (s *Outbox) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.OutboxEvent
	for _, e := range s.Events {
		if e.Status == model.OutboxStatusPending && len(out) < limit {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Outbox) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMsg *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.Events {
		if e.ID == id {
			e.Status = status
			e.ErrorMessage = errMsg
			if status == model.OutboxStatusFailed {
				e.RetryCount++
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

var (
	_ repository.AppointmentRepository     = (*Appointments)(nil)
	_ repository.HoldRepository            = (*Holds)(nil)
	_ repository.StaffAssignmentRepository = (*StaffAssignments)(nil)
	_ repository.CallRepository            = (*Calls)(nil)
	_ repository.CallLogRepository         = (*CallLogs)(nil)
	_ repository.ReferenceRepository       = (*Reference)(nil)
	_ repository.ClinicalNoteRepository    = (*Notes)(nil)
	_ repository.OutboxRepository          = (*Outbox)(nil)
)
