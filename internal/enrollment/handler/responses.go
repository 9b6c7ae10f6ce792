package handler

import "enrollsvc/internal/enrollment/models"

// EnrollmentResponse wraps a single record in a message envelope.
type EnrollmentResponse struct {
	Message    string             `json:"message"`
	Enrollment *models.Enrollment `json:"enrollment"`
}

// ListResponse wraps a collection. Count is redundant but convenient for
// callers paging by eye.
type ListResponse struct {
	Count       int                 `json:"count"`
	Enrollments []models.Enrollment `json:"enrollments"`
}
