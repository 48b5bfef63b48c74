package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xhad/museum/internal/models"
)

// MemoryAdminStore keeps admin records in creation order.
type MemoryAdminStore struct {
	mu      sync.RWMutex
	records []models.AdminArtifact
	now     func() time.Time
}

func NewMemoryAdminStore() *MemoryAdminStore {
	return &MemoryAdminStore{now: time.Now}
}

// List returns records newest first.
func (s *MemoryAdminStore) List(_ context.Context) ([]models.AdminArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AdminArtifact, 0, len(s.records))
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
	}
	return out, nil
}

func (s *MemoryAdminStore) Get(_ context.Context, id string) (*models.AdminArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.find(func(a models.AdminArtifact) bool { return a.ID == id }); i >= 0 {
		a := s.records[i]
		return &a, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryAdminStore) GetByArtifactID(_ context.Context, artifactID string) (*models.AdminArtifact, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.find(func(a models.AdminArtifact) bool { return a.ArtifactID == artifactID }); i >= 0 {
		a := s.records[i]
		return &a, nil
	}
	return nil, ErrNotFound
}

// Create assigns the document id, the next ART### identifier and both
// timestamps.
func (s *MemoryAdminStore) Create(_ context.Context, a models.AdminArtifact) (*models.AdminArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := ""
	if n := len(s.records); n > 0 {
		last = s.records[n-1].ArtifactID
	}

	now := s.now().UTC()
	a.ID = uuid.NewString()
	a.ArtifactID = NextArtifactID(last)
	a.CreatedAt = now
	a.UpdatedAt = now
	if a.ImageURLs == nil {
		a.ImageURLs = []string{}
	}
	s.records = append(s.records, a)
	return &a, nil
}

func (s *MemoryAdminStore) Update(_ context.Context, id string, in models.AdminInput) (*models.AdminArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(func(a models.AdminArtifact) bool { return a.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	a := s.records[i]
	a.ApplyUpdate(in)
	a.UpdatedAt = s.now().UTC()
	s.records[i] = a
	return &a, nil
}

func (s *MemoryAdminStore) Delete(_ context.Context, id string) (*models.AdminArtifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(func(a models.AdminArtifact) bool { return a.ID == id })
	if i < 0 {
		return nil, ErrNotFound
	}
	a := s.records[i]
	s.records = append(s.records[:i], s.records[i+1:]...)
	return &a, nil
}

func (s *MemoryAdminStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func (s *MemoryAdminStore) Close() {}

func (s *MemoryAdminStore) find(match func(models.AdminArtifact) bool) int {
	for i, a := range s.records {
		if match(a) {
			return i
		}
	}
	return -1
}
