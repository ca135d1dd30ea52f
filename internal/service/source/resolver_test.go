package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository/repotest"
	"github.com/jwalitptl/dental-admin/pkg/logger"
	"github.com/jwalitptl/dental-admin/pkg/metrics"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	holds    *repotest.Holds
	calls    *repotest.Calls
	logs     *repotest.CallLogs
	resolver *Resolver
	metrics  *metrics.Metrics
}

func newFixture() *fixture {
	f := &fixture{
		holds:   &repotest.Holds{},
		calls:   &repotest.Calls{Items: map[uuid.UUID]*model.Call{}},
		logs:    &repotest.CallLogs{ByCall: map[uuid.UUID]*model.CallLog{}},
		metrics: metrics.New("test", nil),
	}
	f.resolver = NewResolver(f.holds, f.calls, f.logs, logger.Nop(), f.metrics)
	return f
}

func TestResolveWithoutCall(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	assert.Equal(t, model.SourceKindManual, f.resolver.Resolve(ctx, nil, "llamó la madre").Kind)
	assert.Equal(t, model.SourceKindUnknown, f.resolver.Resolve(ctx, nil, "  ").Kind)
}

func TestResolveMissingCallIsMinimal(t *testing.T) {
	f := newFixture()
	callID := uuid.New()
	hold := &model.AppointmentHold{HeldByCallID: &callID, Status: model.HoldStatusHeld}

	info := f.resolver.ForHold(context.Background(), hold)

	require.NotNil(t, info)
	assert.Equal(t, &model.CallSourceInfo{Kind: model.SourceKindCall}, info)
}

func TestResolveCallLookupErrorDegrades(t *testing.T) {
	f := newFixture()
	f.calls.Err = errors.New("connection reset")
	callID := uuid.New()

	info := f.resolver.Resolve(context.Background(), &callID, "")
	assert.Equal(t, &model.CallSourceInfo{Kind: model.SourceKindCall}, info)
}

func TestResolvePrefersCallLogSummary(t *testing.T) {
	f := newFixture()
	callID := uuid.New()
	started := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	f.calls.Items[callID] = &model.Call{
		ID:            callID,
		Channel:       strPtr("voice"),
		Direction:     strPtr("inbound"),
		IntentSummary: strPtr("intent text"),
		StartedAt:     &started,
	}
	f.logs.ByCall[callID] = &model.CallLog{Summary: strPtr(`{"summary":"Paciente con dolor"}`)}

	info := f.resolver.Resolve(context.Background(), &callID, "")

	assert.Equal(t, model.SourceKindCall, info.Kind)
	assert.Equal(t, "voice", *info.Channel)
	assert.Equal(t, "inbound", *info.Direction)
	assert.Equal(t, started, *info.StartedAt)
	require.NotNil(t, info.Summary)
	assert.Equal(t, "Paciente con dolor", *info.Summary)
}

func TestResolveFallsBackToIntentSummary(t *testing.T) {
	f := newFixture()
	callID := uuid.New()
	f.calls.Items[callID] = &model.Call{ID: callID, IntentSummary: strPtr(`{"highlights":["limpieza","martes"]}`)}
	f.logs.ByCall[callID] = &model.CallLog{Summary: strPtr(`{"other":1}`)}

	info := f.resolver.Resolve(context.Background(), &callID, "")
	require.NotNil(t, info.Summary)
	assert.Equal(t, "limpieza\nmartes", *info.Summary)
}

func TestResolveCallLogErrorIsLogged(t *testing.T) {
	f := newFixture()
	callID := uuid.New()
	f.calls.Items[callID] = &model.Call{ID: callID, IntentSummary: strPtr("pide cita")}
	f.logs.Err = errors.New("provider down")

	info := f.resolver.Resolve(context.Background(), &callID, "")
	require.NotNil(t, info.Summary)
	assert.Equal(t, "pide cita", *info.Summary)
}

func TestForAppointmentFollowsSourceHold(t *testing.T) {
	f := newFixture()
	callID := uuid.New()
	f.calls.Items[callID] = &model.Call{ID: callID, Channel: strPtr("voice")}
	hold := f.holds.Add(&model.AppointmentHold{HeldByCallID: &callID})

	info := f.resolver.ForAppointment(context.Background(), &model.Appointment{SourceHoldID: &hold.ID})
	assert.Equal(t, model.SourceKindCall, info.Kind)
	assert.Equal(t, "voice", *info.Channel)

	manual := f.resolver.ForAppointment(context.Background(), &model.Appointment{Notes: "reservada en mostrador"})
	assert.Equal(t, model.SourceKindManual, manual.Kind)
}

func TestForAppointmentUsesHoldNotes(t *testing.T) {
	f := newFixture()
	hold := f.holds.Add(&model.AppointmentHold{Notes: "anotada a mano"})

	info := f.resolver.ForAppointment(context.Background(), &model.Appointment{SourceHoldID: &hold.ID})
	assert.Equal(t, model.SourceKindManual, info.Kind)
}

func TestForAppointmentMissingHold(t *testing.T) {
	f := newFixture()
	missing := uuid.New()

	info := f.resolver.ForAppointment(context.Background(), &model.Appointment{SourceHoldID: &missing})
	assert.Equal(t, model.SourceKindUnknown, info.Kind)
}

func TestDecodeSummaryText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *string
	}{
		{"plain text unchanged", "Quiere cita el lunes", strPtr("Quiere cita el lunes")},
		{"empty", "   ", nil},
		{"summary key", `{"summary":"dolor"}`, strPtr("dolor")},
		{"key precedence", `{"text":"t","notes":"n"}`, strPtr("n")},
		{"description", `{"description":" d "}`, strPtr("d")},
		{"highlights", `{"highlights":["a", "", 3, "b"]}`, strPtr("a\nb")},
		{"nested object", `{"summary":{"text":"inner"}}`, strPtr("inner")},
		{"json string re-resolved", `"{\"notes\":\"deep\"}"`, strPtr("deep")},
		{"json string plain", `"hola"`, strPtr("hola")},
		{"unrecognized object", `{"foo":"bar"}`, nil},
		{"empty summary skipped", `{"summary":"","notes":"n"}`, strPtr("n")},
		{"invalid json kept", `{not json`, strPtr("{not json")},
		{"array", `["x","y"]`, strPtr("x\ny")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeSummaryText(tt.raw))
		})
	}
}
