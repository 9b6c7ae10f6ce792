// Package audit records enrollment lifecycle actions. Events are appended to
// a local store and optionally streamed to Kafka; neither path is load-bearing
// for the enrollment write itself.
package audit

import (
	"context"
	"time"
)

// Action names what happened to an enrollment.
type Action string

const (
	ActionCreated       Action = "enrollment.created"
	ActionCancelled     Action = "enrollment.cancelled"
	ActionStatusChanged Action = "enrollment.status_changed"
)

// Event is emitted from the enrollment service to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	EnrollmentID string    `json:"enrollment_id"`
	StudentID    string    `json:"student_id"`
	CourseID     string    `json:"course_id"`
	// ActorID tracks who performed the action; for admin operations this
	// differs from StudentID.
	ActorID string `json:"actor_id"`
	// RequestID is the correlation id from the HTTP request context.
	RequestID string `json:"request_id,omitempty"`
	// Detail carries the transition, e.g. "ACTIVE->CANCELLED".
	Detail string `json:"detail,omitempty"`
}

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, e Event) error
}
