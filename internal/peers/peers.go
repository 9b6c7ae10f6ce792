// Package peers wraps the student directory, course catalog, and grade ledger
// services behind one adapter. Every call is bounded by the configured
// timeout; failures either surface as domain errors (fail closed, the
// default) or are replaced by deterministic mock records when the
// mock-fallback knob is on (fail open, degraded-mode operation only).
package peers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"enrollsvc/internal/platform/metrics"
	"enrollsvc/pkg/domain"
	dErrors "enrollsvc/pkg/domain-errors"
)

// StudentRecord is the student directory's view of a student.
type StudentRecord struct {
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
}

// CourseRecord is the course catalog's view of a course.
type CourseRecord struct {
	CourseID string `json:"course_id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// GradeAck acknowledges grade-record creation in the grade ledger.
type GradeAck struct {
	Message string `json:"message"`
}

const (
	serviceStudent = "student service"
	serviceCourse  = "course service"
	serviceGrade   = "grade service"
)

// Validator is the contract the enrollment service depends on.
type Validator interface {
	ValidateStudent(ctx context.Context, studentID string) (StudentRecord, error)
	ValidateCourse(ctx context.Context, courseID string) (CourseRecord, error)
	CreateGradeRecord(ctx context.Context, studentID, courseID string) (GradeAck, error)
}

// Config carries the per-peer base URLs and the process-wide policy knobs.
type Config struct {
	StudentServiceURL string
	CourseServiceURL  string
	GradeServiceURL   string
	CallTimeout       time.Duration
	AllowMockFallback bool
}

// Clients implements Validator over HTTP.
type Clients struct {
	cfg      Config
	client   *http.Client
	cache    *Cache
	logger   *slog.Logger
	metrics  *metrics.Metrics
	breakers map[string]*Breaker
}

// New builds the peer clients. cache may be nil (caching disabled).
func New(cfg Config, cache *Cache, logger *slog.Logger, m *metrics.Metrics) *Clients {
	cfg.StudentServiceURL = strings.TrimRight(cfg.StudentServiceURL, "/")
	cfg.CourseServiceURL = strings.TrimRight(cfg.CourseServiceURL, "/")
	cfg.GradeServiceURL = strings.TrimRight(cfg.GradeServiceURL, "/")
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}
	breakers := make(map[string]*Breaker)
	for _, name := range []string{serviceStudent, serviceCourse, serviceGrade} {
		breakers[name] = NewBreaker(name)
	}
	return &Clients{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.CallTimeout},
		cache:    cache,
		logger:   logger,
		metrics:  m,
		breakers: breakers,
	}
}

// ValidateStudent confirms the student exists in the student directory.
func (c *Clients) ValidateStudent(ctx context.Context, studentID string) (StudentRecord, error) {
	const service = serviceStudent

	id, err := domain.SanitizeID(studentID, "student_id")
	if err != nil {
		return StudentRecord{}, err
	}

	if cached, ok := c.cache.GetStudent(ctx, id); ok {
		return cached, nil
	}

	mock := StudentRecord{StudentID: id, Name: "Mock Student", Status: "Valid"}
	if c.cfg.StudentServiceURL == "" {
		return mock, c.unconfigured(ctx, service)
	}

	var record StudentRecord
	err = c.getJSON(ctx, service, c.cfg.StudentServiceURL+"/students/"+url.PathEscape(id), &record)
	if err != nil {
		return mock, c.failure(ctx, service, err)
	}

	c.cache.SaveStudent(ctx, id, record)
	return record, nil
}

// ValidateCourse confirms the course exists in the course catalog.
func (c *Clients) ValidateCourse(ctx context.Context, courseID string) (CourseRecord, error) {
	const service = serviceCourse

	id, err := domain.SanitizeID(courseID, "course_id")
	if err != nil {
		return CourseRecord{}, err
	}

	if cached, ok := c.cache.GetCourse(ctx, id); ok {
		return cached, nil
	}

	mock := CourseRecord{CourseID: id, Name: "Mock Course", Capacity: 50}
	if c.cfg.CourseServiceURL == "" {
		return mock, c.unconfigured(ctx, service)
	}

	var record CourseRecord
	err = c.getJSON(ctx, service, c.cfg.CourseServiceURL+"/courses/"+url.PathEscape(id), &record)
	if err != nil {
		return mock, c.failure(ctx, service, err)
	}

	c.cache.SaveCourse(ctx, id, record)
	return record, nil
}

// CreateGradeRecord asks the grade ledger to open a record for the pair.
// Callers invoke this after the enrollment is already persisted; the write is
// not rolled back on failure.
func (c *Clients) CreateGradeRecord(ctx context.Context, studentID, courseID string) (GradeAck, error) {
	const service = serviceGrade

	sid, err := domain.SanitizeID(studentID, "student_id")
	if err != nil {
		return GradeAck{}, err
	}
	cid, err := domain.SanitizeID(courseID, "course_id")
	if err != nil {
		return GradeAck{}, err
	}

	mock := GradeAck{Message: "Mock grade record created"}
	if c.cfg.GradeServiceURL == "" {
		return mock, c.unconfigured(ctx, service)
	}

	payload, err := json.Marshal(map[string]string{"student_id": sid, "course_id": cid})
	if err != nil {
		return GradeAck{}, dErrors.Wrap(dErrors.CodeInternal, "encode grade request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.GradeServiceURL+"/grades", bytes.NewReader(payload))
	if err != nil {
		return GradeAck{}, dErrors.Wrap(dErrors.CodeInternal, "build grade request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var ack GradeAck
	if err := c.do(ctx, service, req, &ack); err != nil {
		return mock, c.failure(ctx, service, err)
	}
	return ack, nil
}

func (c *Clients) getJSON(ctx context.Context, service, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeInternal, "build "+service+" request", err)
	}
	return c.do(ctx, service, req, out)
}

// do executes the call and normalizes the failure modes: transport errors
// become ServiceUnavailable, non-2xx responses become UpstreamError with the
// peer's status proxied through. An open circuit short-circuits to
// ServiceUnavailable without touching the network. Upstream 4xx answers count
// as peer health, not outage, so they never trip the breaker.
func (c *Clients) do(ctx context.Context, service string, req *http.Request, out any) error {
	breaker := c.breakers[service]
	if !breaker.Allow() {
		return dErrors.New(dErrors.CodeServiceUnavailable, service+" is unavailable")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if _, change := breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "peer circuit opened", "service", service)
		}
		return dErrors.Wrap(dErrors.CodeServiceUnavailable, service+" is unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		if _, change := breaker.RecordFailure(); change.Opened {
			c.logger.WarnContext(ctx, "peer circuit opened", "service", service)
		}
		return dErrors.Upstream(resp.StatusCode, upstreamMessage(service, resp))
	}
	if _, change := breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "peer circuit closed", "service", service)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.Upstream(resp.StatusCode, upstreamMessage(service, resp))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return dErrors.Wrap(dErrors.CodeUpstream, service+" returned an invalid response", err)
		}
	}
	return nil
}

// failure applies the fail-open/fail-closed policy to a normalized call error.
// A nil return means the caller should use its mock record.
func (c *Clients) failure(ctx context.Context, service string, err error) error {
	c.metrics.IncPeerFailure(service)
	if c.cfg.AllowMockFallback {
		c.metrics.IncMockFallback(service)
		c.logger.WarnContext(ctx, "peer call failed, substituting mock record",
			"service", service,
			"error", err,
		)
		return nil
	}
	return err
}

func (c *Clients) unconfigured(ctx context.Context, service string) error {
	return c.failure(ctx, service, dErrors.New(dErrors.CodeServiceUnavailable, service+" is not configured"))
}

func upstreamMessage(service string, resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var envelope struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Message != "" {
			return envelope.Message
		}
	}
	return fmt.Sprintf("%s returned status %d", service, resp.StatusCode)
}
