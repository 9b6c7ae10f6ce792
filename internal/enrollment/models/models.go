// Package models defines the enrollment record, the only persistent entity
// this service owns.
package models

import (
	"time"

	dErrors "enrollsvc/pkg/domain-errors"
)

// Status enumerates the enrollment lifecycle states.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCancelled Status = "CANCELLED"
	StatusWithdrawn Status = "WITHDRAWN"
	StatusCompleted Status = "COMPLETED"
)

// ParseStatus validates a client-supplied status value.
func ParseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusActive, StatusCancelled, StatusWithdrawn, StatusCompleted:
		return Status(v), nil
	}
	return "", dErrors.New(dErrors.CodeBadRequest, "status must be one of ACTIVE, CANCELLED, WITHDRAWN, COMPLETED")
}

// IsTerminal reports whether the status admits no further transitions.
// CANCELLED and COMPLETED records are closed history.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Enrollment ties a student to a course. Student and course ids are owned by
// peer services; this record only references them.
type Enrollment struct {
	ID         string    `json:"id" bson:"_id,omitempty"`
	StudentID  string    `json:"student_id" bson:"student_id"`
	CourseID   string    `json:"course_id" bson:"course_id"`
	Status     Status    `json:"status" bson:"status"`
	EnrolledAt time.Time `json:"enrolled_at" bson:"enrolled_at"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// CheckResult answers the unauthenticated existence probe. Status is nil when
// no record exists for the pair.
type CheckResult struct {
	IsEnrolled   bool    `json:"isEnrolled"`
	Status       *Status `json:"status"`
	EnrollmentID string  `json:"enrollment_id,omitempty"`
}
