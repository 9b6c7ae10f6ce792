package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"enrollsvc/internal/enrollment/models"
	"enrollsvc/pkg/platform/sentinel"
)

// InMemoryStore keeps records in a map behind one mutex. The check-and-insert
// in Insert runs under that mutex, which is what closes the duplicate-ACTIVE
// race for this implementation.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]models.Enrollment
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]models.Enrollment)}
}

func (s *InMemoryStore) Insert(_ context.Context, e *models.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.records {
		if r.StudentID == e.StudentID && r.CourseID == e.CourseID && r.Status == models.StatusActive {
			return sentinel.ErrConflict
		}
	}

	now := time.Now()
	e.ID = uuid.NewString()
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = now
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	s.records[e.ID] = *e
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &r, nil
}

func (s *InMemoryStore) FindActive(_ context.Context, studentID, courseID string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.records {
		if r.StudentID == studentID && r.CourseID == courseID && r.Status == models.StatusActive {
			return &r, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindLatest(_ context.Context, studentID, courseID string) (*models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *models.Enrollment
	for _, r := range s.records {
		if r.StudentID != studentID || r.CourseID != courseID {
			continue
		}
		if latest == nil || r.EnrolledAt.After(latest.EnrolledAt) {
			rec := r
			latest = &rec
		}
	}
	if latest == nil {
		return nil, sentinel.ErrNotFound
	}
	return latest, nil
}

func (s *InMemoryStore) List(_ context.Context, f Filter) ([]models.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]models.Enrollment, 0)
	for _, r := range s.records {
		if f.StudentID != "" && r.StudentID != f.StudentID {
			continue
		}
		if f.CourseID != "" && r.CourseID != f.CourseID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		matches = append(matches, r)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].EnrolledAt.After(matches[j].EnrolledAt)
	})
	if len(matches) > ListLimit {
		matches = matches[:ListLimit]
	}
	return matches, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id string, status models.Status) (*models.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if status == models.StatusActive {
		for _, other := range s.records {
			if other.ID != id && other.StudentID == r.StudentID && other.CourseID == r.CourseID && other.Status == models.StatusActive {
				return nil, sentinel.ErrConflict
			}
		}
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	s.records[id] = r
	return &r, nil
}
