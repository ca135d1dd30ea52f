package timeline

import (
	"sort"
	"time"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// Assemble merges the appointments and holds of one patient into the ordered
// entries shown under filter. Cancelled appointments and holds that are not
// actively held never appear. Entries with equal start times keep their input
// order, appointments before holds.
func Assemble(appointments []*model.Appointment, holds []*model.AppointmentHold, filter model.Filter, now time.Time) []model.TimelineEntry {
	entries := make([]model.TimelineEntry, 0, len(appointments)+len(holds))

	for _, a := range appointments {
		if a == nil || a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if appointmentVisible(a, filter, now) {
			entries = append(entries, model.AppointmentEntry(a))
		}
	}

	// Holds only ever show up as upcoming.
	if filter == model.FilterUpcoming {
		for _, h := range holds {
			if h == nil || !h.IsActive(now) || !h.StartTime.After(now) {
				continue
			}
			entries = append(entries, model.HoldEntry(h))
		}
	}

	if filter == model.FilterUpcoming {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].StartTime.Before(entries[j].StartTime)
		})
	} else {
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].StartTime.After(entries[j].StartTime)
		})
	}
	return entries
}

func appointmentVisible(a *model.Appointment, filter model.Filter, now time.Time) bool {
	switch filter {
	case model.FilterUpcoming:
		return a.StartTime.After(now)
	case model.FilterPast:
		return !a.StartTime.After(now)
	case model.FilterConfirmed:
		return a.Status == model.AppointmentStatusConfirmed
	case model.FilterNoShow:
		return a.Status == model.AppointmentStatusNoShow
	}
	return false
}
