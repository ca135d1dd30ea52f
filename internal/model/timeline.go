package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Filter names one of the four timeline views.
type Filter string

const (
	FilterUpcoming  Filter = "proximas"
	FilterPast      Filter = "pasadas"
	FilterConfirmed Filter = "confirmadas"
	FilterNoShow    Filter = "inaxistencia"
)

// Filters lists the views in tab order.
var Filters = []Filter{FilterUpcoming, FilterPast, FilterConfirmed, FilterNoShow}

func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter %q", s)
}

type EntryKind string

const (
	EntryKindAppointment EntryKind = "appointment"
	EntryKindHold        EntryKind = "hold"
)

func ParseEntryKind(s string) (EntryKind, error) {
	switch EntryKind(s) {
	case EntryKindAppointment, EntryKindHold:
		return EntryKind(s), nil
	}
	return "", fmt.Errorf("unknown entry kind %q", s)
}

// TimelineEntry is one row of a patient timeline. Exactly one of Appointment and Hold is set.
type TimelineEntry struct {
	Kind        EntryKind        `json:"kind"`
	ID          uuid.UUID        `json:"id"`
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	Appointment *Appointment     `json:"appointment,omitempty"`
	Hold        *AppointmentHold `json:"hold,omitempty"`
}

func AppointmentEntry(a *Appointment) TimelineEntry {
	return TimelineEntry{Kind: EntryKindAppointment, ID: a.ID, StartTime: a.StartTime, EndTime: a.EndTime, Appointment: a}
}

func HoldEntry(h *AppointmentHold) TimelineEntry {
	return TimelineEntry{Kind: EntryKindHold, ID: h.ID, StartTime: h.StartTime, EndTime: h.EndTime, Hold: h}
}

// Snapshot is the authoritative appointment and hold collections of one patient.
type Snapshot struct {
	PatientID    uuid.UUID          `json:"patient_id"`
	Appointments []*Appointment     `json:"appointments"`
	Holds        []*AppointmentHold `json:"holds"`
}
