// Package identity holds the authenticated actor model, the authorization
// gate, and the token validators that produce actors from bearer tokens.
package identity

import "strings"

// RoleAdmin is the only elevated role; everything else is self-service.
const RoleAdmin = "admin"

// Actor is the authenticated identity making a request. It is request-scoped
// and produced by a TokenValidator; nothing persists it.
type Actor struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// IsAdmin reports whether the actor carries the admin role, case-insensitive.
func (a Actor) IsAdmin() bool {
	return strings.EqualFold(a.Role, RoleAdmin)
}

// CanAccessStudent decides whether the actor may read or mutate the target
// student's enrollment data: admins always, everyone else only for themselves.
func (a Actor) CanAccessStudent(studentID string) bool {
	if a.IsAdmin() {
		return true
	}
	return a.ID != "" && a.ID == studentID
}
