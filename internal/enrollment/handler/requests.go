package handler

import (
	"enrollsvc/internal/enrollment/models"
	dErrors "enrollsvc/pkg/domain-errors"
)

// CreateEnrollmentRequest is the POST /enroll body.
type CreateEnrollmentRequest struct {
	StudentID string `json:"student_id"`
	CourseID  string `json:"course_id"`
}

func (r CreateEnrollmentRequest) Validate() error {
	if r.StudentID == "" || r.CourseID == "" {
		return dErrors.New(dErrors.CodeBadRequest, "student_id and course_id are required")
	}
	return nil
}

// UpdateStatusRequest is the PATCH /enrollments/{id}/status body.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (r UpdateStatusRequest) Parse() (models.Status, error) {
	if r.Status == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, "status is required")
	}
	return models.ParseStatus(r.Status)
}
