package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
)

// ReferenceRepository caches clinic reference data in memory. Only successful
// reads are cached.
type ReferenceRepository struct {
	next  repository.ReferenceRepository
	cache *gocache.Cache
}

func NewReferenceRepository(next repository.ReferenceRepository, ttl time.Duration) *ReferenceRepository {
	return &ReferenceRepository{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (r *ReferenceRepository) ListServices(ctx context.Context, clinicID uuid.UUID) ([]*model.Service, error) {
	key := "services:" + clinicID.String()
	if v, ok := r.cache.Get(key); ok {
		return v.([]*model.Service), nil
	}
	services, err := r.next.ListServices(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, services)
	for _, s := range services {
		r.cache.SetDefault("service:"+s.ID.String(), s)
	}
	return services, nil
}

func (r *ReferenceRepository) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	key := "service:" + id.String()
	if v, ok := r.cache.Get(key); ok {
		return v.(*model.Service), nil
	}
	service, err := r.next.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, service)
	return service, nil
}

func (r *ReferenceRepository) ListBoxes(ctx context.Context, clinicID uuid.UUID) ([]*model.Box, error) {
	key := "boxes:" + clinicID.String()
	if v, ok := r.cache.Get(key); ok {
		return v.([]*model.Box), nil
	}
	boxes, err := r.next.ListBoxes(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, boxes)
	return boxes, nil
}

func (r *ReferenceRepository) ListStaff(ctx context.Context, clinicID uuid.UUID) ([]*model.Staff, error) {
	key := "staff:" + clinicID.String()
	if v, ok := r.cache.Get(key); ok {
		return v.([]*model.Staff), nil
	}
	staff, err := r.next.ListStaff(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	r.cache.SetDefault(key, staff)
	return staff, nil
}

// Flush drops everything, e.g. after reference data was edited elsewhere.
func (r *ReferenceRepository) Flush() {
	r.cache.Flush()
}

var _ repository.ReferenceRepository = (*ReferenceRepository)(nil)
