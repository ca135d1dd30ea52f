package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/dental-admin/internal/model"
)

// Loader fetches the authoritative snapshot of a patient.
type Loader func(ctx context.Context, patientID uuid.UUID) *model.Snapshot

// Store keeps one workspace per operator and patient. Idle sessions expire
// after the configured TTL.
type Store struct {
	cache *cache.Cache
	load  Loader
	now   func() time.Time
}

func NewStore(ttl time.Duration, load Loader, now func() time.Time) *Store {
	return &Store{
		cache: cache.New(ttl, 2*ttl),
		load:  load,
		now:   now,
	}
}

// Get returns the session workspace, loading the patient on first use.
func (s *Store) Get(ctx context.Context, operatorID, patientID uuid.UUID) *Workspace {
	key := sessionKey(operatorID, patientID)
	if v, ok := s.cache.Get(key); ok {
		ws := v.(*Workspace)
		// touch
		s.cache.SetDefault(key, ws)
		return ws
	}

	ws := New(s.load(ctx, patientID), s.now)
	if err := s.cache.Add(key, ws, cache.DefaultExpiration); err != nil {
		// a concurrent first request won
		if v, ok := s.cache.Get(key); ok {
			return v.(*Workspace)
		}
		s.cache.SetDefault(key, ws)
	}
	return ws
}

// Reload replaces the session's snapshot with a fresh one.
func (s *Store) Reload(ctx context.Context, operatorID, patientID uuid.UUID) *Workspace {
	ws := s.Get(ctx, operatorID, patientID)
	ws.Replace(s.load(ctx, patientID))
	return ws
}

func (s *Store) Drop(operatorID, patientID uuid.UUID) {
	s.cache.Delete(sessionKey(operatorID, patientID))
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func sessionKey(operatorID, patientID uuid.UUID) string {
	return fmt.Sprintf("%s:%s", operatorID, patientID)
}
