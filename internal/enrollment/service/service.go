// Package service implements the enrollment lifecycle: input sanitation,
// authorization, peer validation, the uniqueness and transition rules, and
// the grade-ledger side effect.
package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"enrollsvc/internal/audit"
	"enrollsvc/internal/enrollment/models"
	"enrollsvc/internal/enrollment/store"
	"enrollsvc/internal/identity"
	"enrollsvc/internal/peers"
	"enrollsvc/internal/platform/metrics"
	"enrollsvc/internal/platform/middleware"
	"enrollsvc/pkg/domain"
	dErrors "enrollsvc/pkg/domain-errors"
	"enrollsvc/pkg/platform/sentinel"
)

// Service orchestrates enrollment operations. It holds no mutable state of
// its own; all persistence goes through the store and all policy is fixed at
// construction.
type Service struct {
	store   store.Store
	peers   peers.Validator
	audit   *audit.Publisher
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func New(st store.Store, validator peers.Validator, publisher *audit.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		peers:   validator,
		audit:   publisher,
		logger:  logger,
		metrics: m,
	}
}

// Create enrolls a student in a course. Peer validation failures abort before
// any write; a grade-ledger failure afterwards does not roll the enrollment
// back (enrollment is authoritative, grading eventually consistent).
func (s *Service) Create(ctx context.Context, actor identity.Actor, studentID, courseID string) (*models.Enrollment, error) {
	sid, err := domain.SanitizeID(studentID, "student_id")
	if err != nil {
		return nil, err
	}
	cid, err := domain.SanitizeID(courseID, "course_id")
	if err != nil {
		return nil, err
	}

	if !actor.CanAccessStudent(sid) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only enroll yourself in a course")
	}

	// Student and course lookups are independent; run them concurrently with
	// shared cancellation on first failure.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := s.peers.ValidateStudent(gctx, sid)
		return err
	})
	g.Go(func() error {
		_, err := s.peers.ValidateCourse(gctx, cid)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Advisory pre-check for a friendly conflict message; the store's
	// uniqueness guard is what actually closes the race.
	if _, err := s.store.FindActive(ctx, sid, cid); err == nil {
		return nil, dErrors.New(dErrors.CodeConflict, "Student already enrolled in this course")
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to check existing enrollment", err)
	}

	e := &models.Enrollment{StudentID: sid, CourseID: cid, Status: models.StatusActive}
	if err := s.store.Insert(ctx, e); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "Student already enrolled in this course")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to create enrollment", err)
	}

	s.metrics.IncCreated()
	s.emit(ctx, audit.ActionCreated, e, actor, "")

	if _, err := s.peers.CreateGradeRecord(ctx, sid, cid); err != nil {
		// The enrollment is already committed and stays committed.
		s.logger.WarnContext(ctx, "grade record creation failed after enrollment persisted",
			"request_id", middleware.GetRequestID(ctx),
			"enrollment_id", e.ID,
			"error", err,
		)
		return e, err
	}
	return e, nil
}

// Cancel moves an ACTIVE (or WITHDRAWN/COMPLETED-adjacent) record to
// CANCELLED. Cancelling an already-CANCELLED record is a client error.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id string) (*models.Enrollment, error) {
	eid, err := domain.SanitizeID(id, "id")
	if err != nil {
		return nil, err
	}

	record, err := s.findByID(ctx, eid)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStudent(record.StudentID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only cancel your own enrollments")
	}
	if record.Status == models.StatusCancelled {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Enrollment is already cancelled")
	}

	updated, err := s.updateStatus(ctx, eid, models.StatusCancelled)
	if err != nil {
		return nil, err
	}

	s.metrics.IncCancelled()
	s.emit(ctx, audit.ActionCancelled, updated, actor, string(record.Status)+"->"+string(models.StatusCancelled))
	return updated, nil
}

// UpdateStatus sets an enrollment to any enumerated status. Terminal records
// (CANCELLED, COMPLETED) are closed history and reject further updates.
func (s *Service) UpdateStatus(ctx context.Context, actor identity.Actor, id string, newStatus models.Status) (*models.Enrollment, error) {
	eid, err := domain.SanitizeID(id, "id")
	if err != nil {
		return nil, err
	}

	record, err := s.findByID(ctx, eid)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStudent(record.StudentID) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only update your own enrollments")
	}
	if record.Status.IsTerminal() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Enrollment status "+string(record.Status)+" cannot be changed")
	}

	updated, err := s.updateStatus(ctx, eid, newStatus)
	if err != nil {
		return nil, err
	}

	s.metrics.IncStatusUpdate()
	s.emit(ctx, audit.ActionStatusChanged, updated, actor, string(record.Status)+"->"+string(newStatus))
	return updated, nil
}

// ListByStudent returns the student's enrollments, newest first. An empty
// result is a 200 with an empty list, never a 404.
func (s *Service) ListByStudent(ctx context.Context, actor identity.Actor, studentID string) ([]models.Enrollment, error) {
	sid, err := domain.SanitizeID(studentID, "studentId")
	if err != nil {
		return nil, err
	}
	if !actor.CanAccessStudent(sid) {
		return nil, dErrors.New(dErrors.CodeForbidden, "You can only view your own enrollments")
	}
	return s.list(ctx, store.Filter{StudentID: sid})
}

// ListByCourse returns the course roster for admins. Non-admin actors get the
// query narrowed to their own records instead of a rejection.
func (s *Service) ListByCourse(ctx context.Context, actor identity.Actor, courseID string) ([]models.Enrollment, error) {
	cid, err := domain.SanitizeID(courseID, "courseId")
	if err != nil {
		return nil, err
	}

	filter := store.Filter{CourseID: cid}
	if !actor.IsAdmin() {
		aid, err := domain.SanitizeID(actor.ID, "actor id")
		if err != nil {
			return nil, err
		}
		filter.StudentID = aid
	}
	return s.list(ctx, filter)
}

// ListAll returns the most recent records: every student's for admins, the
// actor's own otherwise.
func (s *Service) ListAll(ctx context.Context, actor identity.Actor) ([]models.Enrollment, error) {
	filter := store.Filter{}
	if !actor.IsAdmin() {
		aid, err := domain.SanitizeID(actor.ID, "actor id")
		if err != nil {
			return nil, err
		}
		filter.StudentID = aid
	}
	return s.list(ctx, filter)
}

// Check is the unauthenticated service-to-service probe. It reflects the most
// recent record for the pair regardless of status; absence is not an error.
func (s *Service) Check(ctx context.Context, studentID, courseID string) (models.CheckResult, error) {
	sid, err := domain.SanitizeID(studentID, "studentId")
	if err != nil {
		return models.CheckResult{}, err
	}
	cid, err := domain.SanitizeID(courseID, "courseId")
	if err != nil {
		return models.CheckResult{}, err
	}

	record, err := s.store.FindLatest(ctx, sid, cid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.CheckResult{IsEnrolled: false, Status: nil}, nil
		}
		return models.CheckResult{}, dErrors.Wrap(dErrors.CodeInternal, "failed to check enrollment", err)
	}

	status := record.Status
	return models.CheckResult{
		IsEnrolled:   status == models.StatusActive,
		Status:       &status,
		EnrollmentID: record.ID,
	}, nil
}

func (s *Service) findByID(ctx context.Context, id string) (*models.Enrollment, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Enrollment not found")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to load enrollment", err)
	}
	return record, nil
}

func (s *Service) updateStatus(ctx context.Context, id string, status models.Status) (*models.Enrollment, error) {
	updated, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "Enrollment not found")
		case errors.Is(err, sentinel.ErrConflict):
			return nil, dErrors.New(dErrors.CodeConflict, "Student already has an active enrollment in this course")
		}
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to update enrollment", err)
	}
	return updated, nil
}

func (s *Service) list(ctx context.Context, f store.Filter) ([]models.Enrollment, error) {
	records, err := s.store.List(ctx, f)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to list enrollments", err)
	}
	return records, nil
}

func (s *Service) emit(ctx context.Context, action audit.Action, e *models.Enrollment, actor identity.Actor, detail string) {
	if s.audit == nil {
		return
	}
	s.audit.Emit(ctx, audit.Event{
		Action:       action,
		EnrollmentID: e.ID,
		StudentID:    e.StudentID,
		CourseID:     e.CourseID,
		ActorID:      actor.ID,
		RequestID:    middleware.GetRequestID(ctx),
		Detail:       detail,
	})
}
