package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

type callRepository struct {
	BaseRepository
}

func NewCallRepository(base BaseRepository) repository.CallRepository {
	return &callRepository{base}
}

func (r *callRepository) GetCall(ctx context.Context, id uuid.UUID) (*model.Call, error) {
	query := `
		SELECT id, clinic_id, channel, direction, intent_summary, external_call_id, started_at
		FROM calls
		WHERE id = $1
	`
	var call model.Call
	if err := r.db.GetContext(ctx, &call, query, id); err != nil {
		return nil, notFound(err, "get call")
	}
	return &call, nil
}

type callLogRepository struct {
	BaseRepository
}

// NewCallLogRepository reads call logs from the call_logs table.
func NewCallLogRepository(base BaseRepository) repository.CallLogRepository {
	return &callLogRepository{base}
}

func (r *callLogRepository) GetCallLog(ctx context.Context, callID uuid.UUID, externalCallID *string) (*model.CallLog, error) {
	const byCall = `
		SELECT id, call_id, external_call_id, summary
		FROM call_logs
		WHERE call_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	var log model.CallLog
	err := r.db.GetContext(ctx, &log, byCall, callID)
	if err == nil {
		return &log, nil
	}
	if err = notFound(err, "get call log"); !errors.Is(err, repository.ErrNotFound) || externalCallID == nil {
		return nil, err
	}

	const byExternal = `
		SELECT id, call_id, external_call_id, summary
		FROM call_logs
		WHERE external_call_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`
	if err := r.db.GetContext(ctx, &log, byExternal, *externalCallID); err != nil {
		return nil, notFound(err, "get call log")
	}
	return &log, nil
}
