// Package store persists guest profiles keyed by room identifier.
package store

import (
	"context"
	"sync"

	"github.com/arthurdotwork/songroom/internal/domain"
)

type MemoryProfileStore struct {
	profiles map[string]domain.GuestProfile
	sync.RWMutex
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[string]domain.GuestProfile),
	}
}

func (s *MemoryProfileStore) Profile(ctx context.Context, roomID string) (domain.GuestProfile, bool, error) {
	s.RLock()
	defer s.RUnlock()

	profile, ok := s.profiles[roomID]
	return profile, ok, nil
}

func (s *MemoryProfileStore) SaveProfile(ctx context.Context, roomID string, profile domain.GuestProfile) error {
	s.Lock()
	defer s.Unlock()

	s.profiles[roomID] = profile
	return nil
}
