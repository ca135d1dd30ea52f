package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/dental-admin/internal/model"
)

type countingRepo struct {
	calls    map[string]int
	services []*model.Service
	err      error
}

func (r *countingRepo) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	r.calls["services"]++
	return r.services, r.err
}

func (r *countingRepo) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	r.calls["service"]++
	if r.err != nil {
		return nil, r.err
	}
	return &model.Service{ID: id, Name: "Limpieza"}, nil
}

func (r *countingRepo) ListBoxes(ctx context.Context, clinicID uuid.UUID) ([]*model.Box, error) {
	r.calls["boxes"]++
	return []*model.Box{{ID: uuid.New(), Name: "Box 1"}}, r.err
}

func (r *countingRepo) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	r.calls["staff"]++
	return []*model.Staff{{ID: uuid.New(), Name: "Dra. Ruiz"}}, r.err
}

func TestReferenceCacheHits(t *testing.T) {
	svc := &model.Service{ID: uuid.New(), Name: "Limpieza"}
	next := &countingRepo{calls: map[string]int{}, services: []*model.Service{svc}}
	repo := NewReferenceRepository(next, time.Minute)
	ctx := context.Background()
	clinic := uuid.New()

	for i := 0; i < 3; i++ {
		_, err := repo.ListServices(ctx, clinic)
		require.NoError(t, err)
		_, err = repo.ListBoxes(ctx, clinic)
		require.NoError(t, err)
		_, err = repo.ListStaff(ctx, clinic)
		require.NoError(t, err)
	}
	got, err := repo.GetService(ctx, svc.ID)
	require.NoError(t, err)

	assert.Same(t, svc, got)
	assert.Equal(t, 1, next.calls["services"])
	assert.Equal(t, 1, next.calls["boxes"])
	assert.Equal(t, 1, next.calls["staff"])
	assert.Equal(t, 0, next.calls["service"])

	repo.Flush()
	_, _ = repo.ListStaff(ctx, clinic)
	assert.Equal(t, 2, next.calls["staff"])
}

func TestReferenceCacheSkipsErrors(t *testing.T) {
	next := &countingRepo{calls: map[string]int{}, err: errors.New("db down")}
	repo := NewReferenceRepository(next, time.Minute)

	_, err := repo.GetService(context.Background(), uuid.New())
	require.Error(t, err)
	id := uuid.New()
	_, _ = repo.GetService(context.Background(), id)
	_, _ = repo.GetService(context.Background(), id)
	assert.Equal(t, 3, next.calls["service"])
}
