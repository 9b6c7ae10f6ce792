// Package store persists enrollment records. The service depends only on the
// Store interface; Mongo backs it in deployment and the in-memory variant
// backs tests and standalone runs.
package store

import (
	"context"

	"enrollsvc/internal/enrollment/models"
)

// ListLimit caps every list query. Ordering is enrolled_at descending.
const ListLimit = 100

// Filter narrows list queries. Zero-valued fields are unconstrained.
type Filter struct {
	StudentID string
	CourseID  string
	Status    models.Status
}

// Store is the record-store contract. Implementations must enforce the
// single-ACTIVE-per-(student,course) invariant inside Insert and return
// sentinel.ErrConflict when it would be violated; the service's advisory
// pre-check alone cannot close the concurrent-create race.
type Store interface {
	// Insert persists a new record and assigns its ID.
	Insert(ctx context.Context, e *models.Enrollment) error

	// FindByID returns sentinel.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id string) (*models.Enrollment, error)

	// FindActive returns the ACTIVE record for the pair, or sentinel.ErrNotFound.
	FindActive(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)

	// FindLatest returns the most recently enrolled record for the pair
	// regardless of status, or sentinel.ErrNotFound.
	FindLatest(ctx context.Context, studentID, courseID string) (*models.Enrollment, error)

	// List returns up to ListLimit matching records, newest first.
	List(ctx context.Context, f Filter) ([]models.Enrollment, error)

	// UpdateStatus persists a status change and bumps updated_at.
	UpdateStatus(ctx context.Context, id string, status models.Status) (*models.Enrollment, error)
}
