// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package models

// Role names recognised by permission checks. Any other role is an
// ordinary member.
const (
	RoleAdmin       = "Admin"
	RoleCoordinator = "Coordinator"
	RoleMember      = "Member"
)

// Identity is the resolved caller for one request.
type Identity struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// Privileged reports whether the identity may act on photos it does not own.
func (i Identity) Privileged() bool {
	return i.Role == RoleAdmin || i.Role == RoleCoordinator
}

// User is a directory entry kept so comment authors can be displayed.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
