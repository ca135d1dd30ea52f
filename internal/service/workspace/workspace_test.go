package workspace

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
)

var now = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func appointment(offset time.Duration, status model.AppointmentStatus) *model.Appointment {
	a := &model.Appointment{Status: status, StartTime: now.Add(offset), EndTime: now.Add(offset + time.Hour)}
	a.ID = uuid.New()
	return a
}

func hold(offset time.Duration) *model.AppointmentHold {
	h := &model.AppointmentHold{Status: model.HoldStatusHeld, StartTime: now.Add(offset), EndTime: now.Add(offset + 30*time.Minute)}
	h.ID = uuid.New()
	return h
}

func TestNewSelectsFirstUpcoming(t *testing.T) {
	soon := hold(2 * time.Hour)
	later := appointment(48*time.Hour, model.AppointmentStatusConfirmed)
	snap := &model.Snapshot{
		PatientID:    uuid.New(),
		Appointments: []*model.Appointment{later, appointment(-48*time.Hour, model.AppointmentStatusCompleted)},
		Holds:        []*model.AppointmentHold{soon},
	}

	ws := New(snap, clock)
	v := ws.View()
	assert.Equal(t, model.FilterUpcoming, v.Filter)
	assert.Equal(t, snap.PatientID, v.PatientID)
	require.Len(t, v.Entries, 2)
	require.NotNil(t, v.Selected)
	assert.Equal(t, Selection{Kind: model.EntryKindHold, ID: soon.ID}, *v.Selected)

	sel, ok := ws.Selected()
	require.True(t, ok)
	assert.Equal(t, soon, sel.Hold)
}

func TestNextAndPrevWrapAround(t *testing.T) {
	ws := New(&model.Snapshot{}, clock)

	var seen []model.Filter
	for range model.Filters {
		seen = append(seen, ws.Next().Filter)
	}
	assert.Equal(t, []model.Filter{model.FilterPast, model.FilterConfirmed, model.FilterNoShow, model.FilterUpcoming}, seen)

	assert.Equal(t, model.FilterNoShow, ws.Prev().Filter)
	assert.Equal(t, model.FilterConfirmed, ws.Prev().Filter)
}

func TestFilterChangeReselectsFirstEntry(t *testing.T) {
	past := appointment(-24*time.Hour, model.AppointmentStatusNoShow)
	older := appointment(-72*time.Hour, model.AppointmentStatusCompleted)
	upcoming := appointment(24*time.Hour, model.AppointmentStatusScheduled)
	ws := New(&model.Snapshot{Appointments: []*model.Appointment{upcoming, past, older}}, clock)
	assert.Equal(t, upcoming.ID, ws.View().Selected.ID)

	v := ws.SetFilter(model.FilterPast)
	require.Len(t, v.Entries, 2)
	assert.Equal(t, past.ID, v.Selected.ID)

	v = ws.SetFilter(model.FilterConfirmed)
	assert.Empty(t, v.Entries)
	assert.Nil(t, v.Selected)
	_, ok := ws.Selected()
	assert.False(t, ok)
}

func TestFocus(t *testing.T) {
	first := appointment(time.Hour, model.AppointmentStatusConfirmed)
	second := appointment(3*time.Hour, model.AppointmentStatusConfirmed)
	ws := New(&model.Snapshot{Appointments: []*model.Appointment{second, first}}, clock)

	assert.True(t, ws.Focus(model.EntryKindAppointment, second.ID))
	assert.Equal(t, second.ID, ws.View().Selected.ID)

	assert.False(t, ws.Focus(model.EntryKindHold, second.ID))
	assert.False(t, ws.Focus(model.EntryKindAppointment, uuid.New()))
	assert.Equal(t, second.ID, ws.View().Selected.ID)
}

func TestRevealSwitchesToFilterShowingEntry(t *testing.T) {
	past := appointment(-24*time.Hour, model.AppointmentStatusCompleted)
	booked := appointment(2*time.Hour, model.AppointmentStatusConfirmed)
	ws := New(&model.Snapshot{Appointments: []*model.Appointment{booked, past}}, clock)
	ws.SetFilter(model.FilterPast)
	require.Equal(t, past.ID, ws.View().Selected.ID)

	assert.True(t, ws.Reveal(model.EntryKindAppointment, booked.ID))
	v := ws.View()
	assert.Equal(t, model.FilterUpcoming, v.Filter)
	assert.Equal(t, booked.ID, v.Selected.ID)

	ws.SetFilter(model.FilterNoShow)
	assert.False(t, ws.Reveal(model.EntryKindAppointment, uuid.New()))
	assert.Equal(t, model.FilterNoShow, ws.Filter())
}

func TestApplyCancelClearsSelectedEntry(t *testing.T) {
	h := hold(time.Hour)
	a := appointment(5*time.Hour, model.AppointmentStatusConfirmed)
	ws := New(&model.Snapshot{Appointments: []*model.Appointment{a}, Holds: []*model.AppointmentHold{h}}, clock)
	require.Equal(t, h.ID, ws.View().Selected.ID)

	cancelled := *h
	cancelled.Status = model.HoldStatusCancelled
	v := ws.ApplyCancel(model.EntryKindHold, h.ID, &model.Snapshot{
		Appointments: []*model.Appointment{a},
		Holds:        []*model.AppointmentHold{&cancelled},
	})
	require.Len(t, v.Entries, 1)
	assert.Nil(t, v.Selected)
}

func TestApplyCancelOfOtherEntrySelectsFirst(t *testing.T) {
	h := hold(time.Hour)
	a := appointment(5*time.Hour, model.AppointmentStatusConfirmed)
	ws := New(&model.Snapshot{Appointments: []*model.Appointment{a}, Holds: []*model.AppointmentHold{h}}, clock)
	require.True(t, ws.Focus(model.EntryKindAppointment, a.ID))

	v := ws.ApplyCancel(model.EntryKindHold, h.ID, &model.Snapshot{Appointments: []*model.Appointment{a}})
	require.NotNil(t, v.Selected)
	assert.Equal(t, a.ID, v.Selected.ID)

	assert.False(t, ws.ClearIfSelected(model.EntryKindHold, h.ID))
	assert.True(t, ws.ClearIfSelected(model.EntryKindAppointment, a.ID))
	assert.Nil(t, ws.View().Selected)
}

func TestReplaceKeepsFilter(t *testing.T) {
	ws := New(&model.Snapshot{}, clock)
	ws.SetFilter(model.FilterConfirmed)

	a := appointment(-time.Hour, model.AppointmentStatusConfirmed)
	v := ws.Replace(&model.Snapshot{Appointments: []*model.Appointment{a}})
	assert.Equal(t, model.FilterConfirmed, v.Filter)
	require.Len(t, v.Entries, 1)
	assert.Equal(t, a.ID, v.Selected.ID)

	v = ws.Replace(nil)
	assert.Empty(t, v.Entries)
	assert.NotNil(t, ws.Snapshot())
}

func TestStoreKeepsOneWorkspacePerSession(t *testing.T) {
	var loads int32
	loader := func(ctx context.Context, patientID uuid.UUID) *model.Snapshot {
		atomic.AddInt32(&loads, 1)
		return &model.Snapshot{PatientID: patientID}
	}
	store := NewStore(time.Minute, loader, clock)
	operator, patient := uuid.New(), uuid.New()

	ws := store.Get(context.Background(), operator, patient)
	ws.SetFilter(model.FilterPast)
	assert.Same(t, ws, store.Get(context.Background(), operator, patient))
	assert.Equal(t, int32(1), atomic.LoadInt32(&loads))

	other := store.Get(context.Background(), uuid.New(), patient)
	assert.NotSame(t, ws, other)
	assert.Equal(t, model.FilterUpcoming, other.Filter())
	assert.Equal(t, 2, store.Len())

	reloaded := store.Reload(context.Background(), operator, patient)
	assert.Same(t, ws, reloaded)
	assert.Equal(t, model.FilterPast, reloaded.Filter())
	assert.Equal(t, int32(3), atomic.LoadInt32(&loads))

	store.Drop(operator, patient)
	assert.NotSame(t, ws, store.Get(context.Background(), operator, patient))
}

func TestStoreExpiresIdleSessions(t *testing.T) {
	loader := func(ctx context.Context, patientID uuid.UUID) *model.Snapshot {
		return &model.Snapshot{PatientID: patientID}
	}
	store := NewStore(20*time.Millisecond, loader, clock)
	operator, patient := uuid.New(), uuid.New()

	ws := store.Get(context.Background(), operator, patient)
	time.Sleep(40 * time.Millisecond)
	assert.NotSame(t, ws, store.Get(context.Background(), operator, patient))
}

func TestStoreConcurrentFirstUseSharesWorkspace(t *testing.T) {
	loader := func(ctx context.Context, patientID uuid.UUID) *model.Snapshot {
		time.Sleep(5 * time.Millisecond)
		return &model.Snapshot{PatientID: patientID}
	}
	store := NewStore(time.Minute, loader, clock)
	operator, patient := uuid.New(), uuid.New()

	const n = 8
	got := make([]*Workspace, n)
	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			got[i] = store.Get(context.Background(), operator, patient)
		}(i)
	}
	close(start)
	wg.Wait()

	for _, ws := range got[1:] {
		assert.Same(t, got[0], ws)
	}
	assert.Same(t, got[0], store.Get(context.Background(), operator, patient))
}
