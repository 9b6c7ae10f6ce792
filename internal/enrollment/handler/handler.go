// Package handler exposes the enrollment HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"enrollsvc/internal/enrollment/models"
	"enrollsvc/internal/identity"
	"enrollsvc/internal/platform/metrics"
	"enrollsvc/internal/platform/middleware"
	"enrollsvc/internal/platform/ratelimit"
	"enrollsvc/internal/transport/http/shared"
	dErrors "enrollsvc/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks

// Service defines the enrollment operations the handler depends on.
type Service interface {
	Create(ctx context.Context, actor identity.Actor, studentID, courseID string) (*models.Enrollment, error)
	Cancel(ctx context.Context, actor identity.Actor, id string) (*models.Enrollment, error)
	UpdateStatus(ctx context.Context, actor identity.Actor, id string, status models.Status) (*models.Enrollment, error)
	ListByStudent(ctx context.Context, actor identity.Actor, studentID string) ([]models.Enrollment, error)
	ListByCourse(ctx context.Context, actor identity.Actor, courseID string) ([]models.Enrollment, error)
	ListAll(ctx context.Context, actor identity.Actor) ([]models.Enrollment, error)
	Check(ctx context.Context, studentID, courseID string) (models.CheckResult, error)
}

// Handler handles enrollment endpoints.
type Handler struct {
	logger       *slog.Logger
	enrollment   Service
	metrics      *metrics.Metrics
	validator    identity.TokenValidator
	checkLimiter *ratelimit.Limiter
}

// New creates a new enrollment Handler. checkLimiter may be nil to leave the
// probe endpoint unthrottled.
func New(enrollment Service, logger *slog.Logger, m *metrics.Metrics, validator identity.TokenValidator, checkLimiter *ratelimit.Limiter) *Handler {
	return &Handler{
		logger:       logger,
		enrollment:   enrollment,
		metrics:      m,
		validator:    validator,
		checkLimiter: checkLimiter,
	}
}

// Register registers the enrollment routes with the chi router. The check
// probe stays outside the auth group so peer services can call it without a
// token.
func (h *Handler) Register(r chi.Router) {
	r.With(ratelimit.Middleware(h.checkLimiter)).Get("/enrollments/check", h.handleCheck)

	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))
		pr.Post("/enroll", h.handleCreate)
		pr.Delete("/enroll/{id}", h.handleCancel)
		pr.Patch("/enrollments/{id}/status", h.handleUpdateStatus)
		pr.Get("/enrollments", h.handleListAll)
		pr.Get("/enrollments/student/{studentId}", h.handleListByStudent)
		pr.Get("/enrollments/course/{courseId}", h.handleListByCourse)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	var req CreateEnrollmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := req.Validate(); err != nil {
		shared.WriteError(w, err)
		return
	}

	enrollment, err := h.enrollment.Create(ctx, actor, req.StudentID, req.CourseID)
	if err != nil {
		h.logFailure(ctx, "enrollment creation failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, EnrollmentResponse{
		Message:    "Enrollment successful",
		Enrollment: enrollment,
	})
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	enrollment, err := h.enrollment.Cancel(ctx, actor, chi.URLParam(r, "id"))
	if err != nil {
		h.logFailure(ctx, "enrollment cancellation failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, EnrollmentResponse{
		Message:    "Enrollment cancelled successfully",
		Enrollment: enrollment,
	})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := req.Parse()
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	enrollment, err := h.enrollment.UpdateStatus(ctx, actor, chi.URLParam(r, "id"), status)
	if err != nil {
		h.logFailure(ctx, "enrollment status update failed", err)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, EnrollmentResponse{
		Message:    "Enrollment status updated",
		Enrollment: enrollment,
	})
}

func (h *Handler) handleListAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	enrollments, err := h.enrollment.ListAll(ctx, actor)
	if err != nil {
		h.logFailure(ctx, "enrollment listing failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeList(w, enrollments)
}

func (h *Handler) handleListByStudent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	enrollments, err := h.enrollment.ListByStudent(ctx, actor, chi.URLParam(r, "studentId"))
	if err != nil {
		h.logFailure(ctx, "student enrollment listing failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeList(w, enrollments)
}

func (h *Handler) handleListByCourse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := h.actor(ctx, w)
	if !ok {
		return
	}

	enrollments, err := h.enrollment.ListByCourse(ctx, actor, chi.URLParam(r, "courseId"))
	if err != nil {
		h.logFailure(ctx, "course enrollment listing failed", err)
		shared.WriteError(w, err)
		return
	}
	h.writeList(w, enrollments)
}

// handleCheck answers the service-to-service probe. No auth, query params
// instead of a path so peers can ask about any pair.
func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	studentID := r.URL.Query().Get("studentId")
	courseID := r.URL.Query().Get("courseId")
	if studentID == "" || courseID == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "studentId and courseId query parameters are required"))
		return
	}

	result, err := h.enrollment.Check(ctx, studentID, courseID)
	if err != nil {
		h.logFailure(ctx, "enrollment check failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, result)
}

// actor pulls the authenticated actor out of the context. RequireAuth always
// sets it on guarded routes; the empty-context branch is a wiring error.
func (h *Handler) actor(ctx context.Context, w http.ResponseWriter) (identity.Actor, bool) {
	actor, ok := middleware.GetActor(ctx)
	if !ok {
		h.logger.ErrorContext(ctx, "actor missing from context despite auth middleware",
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return identity.Actor{}, false
	}
	return actor, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error) {
	log := h.logger.WarnContext
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		log = h.logger.ErrorContext
	}
	log(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}

func (h *Handler) writeList(w http.ResponseWriter, enrollments []models.Enrollment) {
	if enrollments == nil {
		enrollments = []models.Enrollment{}
	}
	shared.WriteJSON(w, http.StatusOK, ListResponse{
		Count:       len(enrollments),
		Enrollments: enrollments,
	})
}
