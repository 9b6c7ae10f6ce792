//go:build integration

package store_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/suite"

	"enrollsvc/internal/enrollment/models"
	"enrollsvc/internal/enrollment/store"
	"enrollsvc/pkg/platform/sentinel"
	"enrollsvc/pkg/testutil/containers"
)

type MongoStoreSuite struct {
	suite.Suite
	mongo *containers.MongoContainer
	store *store.MongoStore
}

func TestMongoStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(MongoStoreSuite))
}

func (s *MongoStoreSuite) SetupSuite() {
	s.mongo = containers.NewMongoContainer(s.T())
	s.store = store.NewMongo(s.mongo.Client, "enrollsvc_test")
	s.Require().NoError(s.store.EnsureIndexes(context.Background()))
}

func (s *MongoStoreSuite) SetupTest() {
	ctx := context.Background()
	err := s.mongo.Client.Database("enrollsvc_test").Collection("enrollments").Drop(ctx)
	s.Require().NoError(err)
	s.Require().NoError(s.store.EnsureIndexes(ctx))
}

// TestConcurrentCreateSamePairOneWins verifies the partial unique index closes
// the check-then-insert race: many concurrent inserts for one (student, course)
// pair yield exactly one ACTIVE record.
func (s *MongoStoreSuite) TestConcurrentCreateSamePairOneWins() {
	ctx := context.Background()
	const goroutines = 20

	var wg sync.WaitGroup
	var successCount, conflictCount atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, &models.Enrollment{
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

func (s *MongoStoreSuite) TestInsertFindUpdateRoundTrip() {
	ctx := context.Background()

	e := &models.Enrollment{StudentID: "S1", CourseID: "C1", Status: models.StatusActive}
	s.Require().NoError(s.store.Insert(ctx, e))
	s.NotEmpty(e.ID)

	found, err := s.store.FindByID(ctx, e.ID)
	s.Require().NoError(err)
	s.Equal("S1", found.StudentID)
	s.Equal(models.StatusActive, found.Status)

	active, err := s.store.FindActive(ctx, "S1", "C1")
	s.Require().NoError(err)
	s.Equal(e.ID, active.ID)

	updated, err := s.store.UpdateStatus(ctx, e.ID, models.StatusCancelled)
	s.Require().NoError(err)
	s.Equal(models.StatusCancelled, updated.Status)

	_, err = s.store.FindActive(ctx, "S1", "C1")
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	// Index only covers ACTIVE records, so re-enrollment works.
	s.Require().NoError(s.store.Insert(ctx, &models.Enrollment{
		StudentID: "S1", CourseID: "C1", Status: models.StatusActive,
	}))
}

func (s *MongoStoreSuite) TestListOrderingAndFilters() {
	ctx := context.Background()

	s.Require().NoError(s.store.Insert(ctx, &models.Enrollment{StudentID: "S1", CourseID: "C1", Status: models.StatusActive}))
	s.Require().NoError(s.store.Insert(ctx, &models.Enrollment{StudentID: "S2", CourseID: "C1", Status: models.StatusActive}))
	s.Require().NoError(s.store.Insert(ctx, &models.Enrollment{StudentID: "S1", CourseID: "C2", Status: models.StatusActive}))

	byCourse, err := s.store.List(ctx, store.Filter{CourseID: "C1"})
	s.Require().NoError(err)
	s.Len(byCourse, 2)

	byStudent, err := s.store.List(ctx, store.Filter{StudentID: "S1"})
	s.Require().NoError(err)
	s.Len(byStudent, 2)
	for i := 1; i < len(byStudent); i++ {
		s.False(byStudent[i].EnrolledAt.After(byStudent[i-1].EnrolledAt))
	}
}
