package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"enrollsvc/internal/enrollment/models"
	"enrollsvc/pkg/platform/sentinel"
)

type InMemoryStoreSuite struct {
	suite.Suite
	store *InMemoryStore
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.store = NewInMemory()
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) insert(studentID, courseID string, status models.Status) *models.Enrollment {
	e := &models.Enrollment{StudentID: studentID, CourseID: courseID, Status: status}
	s.Require().NoError(s.store.Insert(context.Background(), e))
	return e
}

func (s *InMemoryStoreSuite) TestInsertAssignsIDAndTimestamps() {
	e := s.insert("S1", "C1", models.StatusActive)

	s.NotEmpty(e.ID)
	s.False(e.EnrolledAt.IsZero())
	s.False(e.CreatedAt.IsZero())
	s.False(e.UpdatedAt.IsZero())
}

func (s *InMemoryStoreSuite) TestInsertRejectsDuplicateActive() {
	s.insert("S1", "C1", models.StatusActive)

	err := s.store.Insert(context.Background(), &models.Enrollment{
		StudentID: "S1", CourseID: "C1", Status: models.StatusActive,
	})
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *InMemoryStoreSuite) TestInsertAllowsNewActiveAfterCancellation() {
	first := s.insert("S1", "C1", models.StatusActive)
	_, err := s.store.UpdateStatus(context.Background(), first.ID, models.StatusCancelled)
	s.Require().NoError(err)

	err = s.store.Insert(context.Background(), &models.Enrollment{
		StudentID: "S1", CourseID: "C1", Status: models.StatusActive,
	})
	s.Require().NoError(err)
}

func (s *InMemoryStoreSuite) TestConcurrentInsertSamePairOneWins() {
	const goroutines = 50

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(context.Background(), &models.Enrollment{
				StudentID: "S1", CourseID: "C1", Status: models.StatusActive,
			})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrConflict):
				conflictCount.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), successCount.Load(), "exactly one insert should succeed")
	s.Equal(int32(goroutines-1), conflictCount.Load())
}

func (s *InMemoryStoreSuite) TestFindByID() {
	e := s.insert("S1", "C1", models.StatusActive)

	found, err := s.store.FindByID(context.Background(), e.ID)
	s.Require().NoError(err)
	s.Equal(e.ID, found.ID)

	_, err = s.store.FindByID(context.Background(), "missing")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestFindActiveIgnoresInactiveRecords() {
	e := s.insert("S1", "C1", models.StatusActive)
	_, err := s.store.UpdateStatus(context.Background(), e.ID, models.StatusWithdrawn)
	s.Require().NoError(err)

	_, err = s.store.FindActive(context.Background(), "S1", "C1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestFindLatestPicksNewestRegardlessOfStatus() {
	old := &models.Enrollment{
		StudentID: "S1", CourseID: "C1", Status: models.StatusCancelled,
		EnrolledAt: time.Now().Add(-time.Hour),
	}
	s.Require().NoError(s.store.Insert(context.Background(), old))
	newest := s.insert("S1", "C1", models.StatusActive)

	found, err := s.store.FindLatest(context.Background(), "S1", "C1")
	s.Require().NoError(err)
	s.Equal(newest.ID, found.ID)

	_, err = s.store.FindLatest(context.Background(), "S9", "C9")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *InMemoryStoreSuite) TestListFiltersAndOrders() {
	s.insert("S1", "C1", models.StatusActive)
	s.insert("S2", "C1", models.StatusActive)
	s.insert("S1", "C2", models.StatusActive)

	byStudent, err := s.store.List(context.Background(), Filter{StudentID: "S1"})
	s.Require().NoError(err)
	s.Len(byStudent, 2)

	byCourse, err := s.store.List(context.Background(), Filter{CourseID: "C1"})
	s.Require().NoError(err)
	s.Len(byCourse, 2)

	both, err := s.store.List(context.Background(), Filter{StudentID: "S2", CourseID: "C1"})
	s.Require().NoError(err)
	s.Len(both, 1)

	none, err := s.store.List(context.Background(), Filter{StudentID: "S9"})
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *InMemoryStoreSuite) TestListCapsAtLimitNewestFirst() {
	base := time.Now()
	for i := 0; i < ListLimit+20; i++ {
		e := &models.Enrollment{
			StudentID:  "S1",
			CourseID:   fmt.Sprintf("C%03d", i),
			Status:     models.StatusActive,
			EnrolledAt: base.Add(time.Duration(i) * time.Minute),
		}
		s.Require().NoError(s.store.Insert(context.Background(), e))
	}

	list, err := s.store.List(context.Background(), Filter{StudentID: "S1"})
	s.Require().NoError(err)
	s.Len(list, ListLimit)
	for i := 1; i < len(list); i++ {
		s.False(list[i].EnrolledAt.After(list[i-1].EnrolledAt), "list must be newest first")
	}
}

func (s *InMemoryStoreSuite) TestUpdateStatus() {
	e := s.insert("S1", "C1", models.StatusActive)

	updated, err := s.store.UpdateStatus(context.Background(), e.ID, models.StatusCancelled)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, updated.Status)

	found, err := s.store.FindByID(context.Background(), e.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, found.Status)

	_, err = s.store.UpdateStatus(context.Background(), "missing", models.StatusCancelled)
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
