// Package domain holds identifier parsing shared by every trust boundary.
// Student, course, and actor ids are owned by peer services; this service
// only constrains their shape before they reach store filters or outbound
// URL paths.
package domain

import (
	"strings"

	dErrors "enrollsvc/pkg/domain-errors"
)

// MaxIDLength bounds external identifiers. Peer services issue much shorter
// ids; the cap exists to keep hostile input out of store queries.
const MaxIDLength = 120

// SanitizeID trims value and verifies it is 1-120 characters drawn from
// letters, digits, underscore, and hyphen. The field name is included in the
// error message so handlers can pass it straight to the client.
func SanitizeID(value, field string) (string, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", dErrors.New(dErrors.CodeBadRequest, field+" is required")
	}
	if len(v) > MaxIDLength {
		return "", dErrors.New(dErrors.CodeBadRequest, field+" exceeds maximum length")
	}
	for _, r := range v {
		if !isIDRune(r) {
			return "", dErrors.New(dErrors.CodeBadRequest, field+" contains invalid characters")
		}
	}
	return v, nil
}

func isIDRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	}
	return false
}
