package source

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

// summaryKeys are tried in order when a summary payload is an object.
var summaryKeys = []string{"summary", "notes", "description", "text"}

// Resolver works out where a hold or appointment came from. It only reads, and
// it never fails: lookup errors are logged and give a less detailed answer.
type Resolver struct {
	holds   repository.HoldRepository
	calls   repository.CallRepository
	logs    repository.CallLogRepository
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewResolver(
	holds repository.HoldRepository,
	calls repository.CallRepository,
	logs repository.CallLogRepository,
	log *logger.Logger,
	m *metrics.Metrics,
) *Resolver {
	return &Resolver{
		holds:   holds,
		calls:   calls,
		logs:    logs,
		logger:  log.With("source-resolver"),
		metrics: m,
	}
}

func (r *Resolver) ForHold(ctx context.Context, hold *model.AppointmentHold) *model.CallSourceInfo {
	return r.Resolve(ctx, hold.HeldByCallID, hold.Notes)
}

// ForAppointment follows source_hold_id to the hold and from there to the call.
func (r *Resolver) ForAppointment(ctx context.Context, appt *model.Appointment) *model.CallSourceInfo {
	notes := appt.Notes
	if appt.SourceHoldID == nil {
		return r.Resolve(ctx, nil, notes)
	}

	hold, err := r.holds.Get(ctx, *appt.SourceHoldID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.lookupFailed(err, "failed to load source hold", "hold_id", appt.SourceHoldID.String())
		}
		return r.Resolve(ctx, nil, notes)
	}
	if strings.TrimSpace(notes) == "" {
		notes = hold.Notes
	}
	return r.Resolve(ctx, hold.HeldByCallID, notes)
}

// Resolve describes the call identified by callID. Without a call the result is
// manual when there are notes and unknown otherwise. A call that cannot be
// loaded still yields a bare call result.
func (r *Resolver) Resolve(ctx context.Context, callID *uuid.UUID, notes string) *model.CallSourceInfo {
	if callID == nil {
		if strings.TrimSpace(notes) != "" {
			return &model.CallSourceInfo{Kind: model.SourceKindManual}
		}
		return &model.CallSourceInfo{Kind: model.SourceKindUnknown}
	}

	call, err := r.calls.GetCall(ctx, *callID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			r.lookupFailed(err, "failed to load call", "call_id", callID.String())
		}
		return &model.CallSourceInfo{Kind: model.SourceKindCall}
	}

	info := &model.CallSourceInfo{
		Kind:      model.SourceKindCall,
		Channel:   call.Channel,
		Direction: call.Direction,
		StartedAt: call.StartedAt,
	}

	log, err := r.logs.GetCallLog(ctx, call.ID, call.ExternalCallID)
	switch {
	case err == nil && log.Summary != nil:
		info.Summary = DecodeSummaryText(*log.Summary)
	case err != nil && !errors.Is(err, repository.ErrNotFound):
		r.lookupFailed(err, "failed to load call log", "call_id", call.ID.String())
	}
	if info.Summary == nil && call.IntentSummary != nil {
		info.Summary = DecodeSummaryText(*call.IntentSummary)
	}
	return info
}

func (r *Resolver) lookupFailed(err error, msg string, fields ...interface{}) {
	r.logger.Warn(err, msg, fields...)
	if r.metrics != nil {
		r.metrics.SourceResolveFailures.Inc()
	}
}

// DecodeSummaryText extracts readable text from a summary that may be plain text
// or JSON. Plain text comes back unchanged. JSON objects are searched for
// summary, notes, description and text, then for a highlights array joined by
// newlines. It returns nil when nothing usable is found.
func DecodeSummaryText(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	if !looksLikeJSON(trimmed) {
		return &raw
	}

	var v interface{}
	if err := json.Unmarshal([]byte(trimmed), &v); err != nil {
		return &raw
	}
	if s := textFromValue(v); s != "" {
		return &s
	}
	return nil
}

func looksLikeJSON(s string) bool {
	switch s[0] {
	case '{', '[', '"':
		return true
	}
	return false
}

func textFromValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if s := DecodeSummaryText(val); s != nil {
			return strings.TrimSpace(*s)
		}
	case map[string]interface{}:
		for _, key := range summaryKeys {
			if nested, ok := val[key]; ok {
				if s := textFromValue(nested); s != "" {
					return s
				}
			}
		}
		if list, ok := val["highlights"].([]interface{}); ok {
			return joinStrings(list)
		}
	case []interface{}:
		return joinStrings(val)
	}
	return ""
}

func joinStrings(list []interface{}) string {
	var parts []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n")
}
