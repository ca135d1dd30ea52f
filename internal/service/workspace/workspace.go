// Package workspace keeps the per-operator view of a patient's timeline: the
// active filter, the visible entries and the selected entry.
package workspace

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/service/timeline"
)

// Selection identifies the active entry.
type Selection struct {
	Kind model.EntryKind `json:"kind"`
	ID   uuid.UUID       `json:"id"`
}

// View is a copy of the workspace state safe to hand to callers.
type View struct {
	PatientID uuid.UUID             `json:"patient_id"`
	Filter    model.Filter          `json:"filter"`
	Entries   []model.TimelineEntry `json:"entries"`
	Selected  *Selection            `json:"selected,omitempty"`
}

type Workspace struct {
	mu       sync.Mutex
	now      func() time.Time
	filter   model.Filter
	snapshot *model.Snapshot
	entries  []model.TimelineEntry
	selected *Selection
}

// New starts on the upcoming view with the first entry selected.
func New(snapshot *model.Snapshot, now func() time.Time) *Workspace {
	if now == nil {
		now = time.Now
	}
	w := &Workspace{now: now, filter: model.FilterUpcoming}
	w.replace(snapshot)
	return w
}

func (w *Workspace) View() View {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view()
}

func (w *Workspace) Filter() model.Filter {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.filter
}

func (w *Workspace) Snapshot() *model.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshot
}

// Selected returns the active entry, if any.
func (w *Workspace) Selected() (model.TimelineEntry, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.selected == nil {
		return model.TimelineEntry{}, false
	}
	for _, e := range w.entries {
		if e.Kind == w.selected.Kind && e.ID == w.selected.ID {
			return e, true
		}
	}
	return model.TimelineEntry{}, false
}

func (w *Workspace) SetFilter(f model.Filter) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filter = f
	w.derive()
	return w.view()
}

// Next moves to the following tab, wrapping after the last one.
func (w *Workspace) Next() View {
	return w.step(1)
}

// Prev moves to the preceding tab, wrapping before the first one.
func (w *Workspace) Prev() View {
	return w.step(-1)
}

func (w *Workspace) step(delta int) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	idx := 0
	for i, f := range model.Filters {
		if f == w.filter {
			idx = i
			break
		}
	}
	n := len(model.Filters)
	w.filter = model.Filters[((idx+delta)%n+n)%n]
	w.derive()
	return w.view()
}

// Replace swaps in a freshly loaded snapshot and selects the first entry.
func (w *Workspace) Replace(snapshot *model.Snapshot) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.replace(snapshot)
	return w.view()
}

// Focus selects the given entry when it is visible under the current filter.
func (w *Workspace) Focus(kind model.EntryKind, id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.focus(kind, id)
}

// Reveal selects the given entry, switching to the first filter in tab order
// that shows it when the current one does not. The filter is left unchanged
// when no filter shows the entry.
func (w *Workspace) Reveal(kind model.EntryKind, id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.focus(kind, id) {
		return true
	}
	current := w.filter
	for _, f := range model.Filters {
		if f == current {
			continue
		}
		w.filter = f
		w.derive()
		if w.focus(kind, id) {
			return true
		}
	}
	w.filter = current
	w.derive()
	return false
}

func (w *Workspace) focus(kind model.EntryKind, id uuid.UUID) bool {
	for _, e := range w.entries {
		if e.Kind == kind && e.ID == id {
			w.selected = &Selection{Kind: kind, ID: id}
			return true
		}
	}
	return false
}

// ClearIfSelected drops the selection when it points at the given entry.
func (w *Workspace) ClearIfSelected(kind model.EntryKind, id uuid.UUID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.clearIfSelected(kind, id)
}

// ApplyCancel installs the snapshot reloaded after a cancellation. If the
// cancelled entry was selected the selection stays empty, otherwise the first
// entry is selected as after any refresh.
func (w *Workspace) ApplyCancel(kind model.EntryKind, id uuid.UUID, snapshot *model.Snapshot) View {
	w.mu.Lock()
	defer w.mu.Unlock()
	cleared := w.clearIfSelected(kind, id)
	w.replace(snapshot)
	if cleared {
		w.selected = nil
	}
	return w.view()
}

func (w *Workspace) clearIfSelected(kind model.EntryKind, id uuid.UUID) bool {
	if w.selected != nil && w.selected.Kind == kind && w.selected.ID == id {
		w.selected = nil
		return true
	}
	return false
}

func (w *Workspace) replace(snapshot *model.Snapshot) {
	if snapshot == nil {
		snapshot = &model.Snapshot{}
	}
	w.snapshot = snapshot
	w.derive()
}

func (w *Workspace) derive() {
	w.entries = timeline.Assemble(w.snapshot.Appointments, w.snapshot.Holds, w.filter, w.now())
	w.selected = nil
	if len(w.entries) > 0 {
		w.selected = &Selection{Kind: w.entries[0].Kind, ID: w.entries[0].ID}
	}
}

func (w *Workspace) view() View {
	v := View{
		PatientID: w.snapshot.PatientID,
		Filter:    w.filter,
		Entries:   make([]model.TimelineEntry, len(w.entries)),
	}
	copy(v.Entries, w.entries)
	if w.selected != nil {
		sel := *w.selected
		v.Selected = &sel
	}
	return v
}
