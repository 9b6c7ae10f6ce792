package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores and peer clients return
// these (optionally wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: record does not exist in the store
// - ErrConflict: a competing record blocks the write (duplicate ACTIVE enrollment)
// - ErrInvalidState: record in wrong status for the requested operation
// - ErrUnavailable: peer service or resource unreachable or unconfigured
//
// For validation errors (bad input, missing fields), use pkg/domain-errors directly.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
