// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
)

// UserCtx returns the user's canonical role, uid, and a found flag.
// If no user is present in context or the role string is malformed, it
// returns ("", "", false) so callers fail closed.
func UserCtx(r *http.Request) (role userpolicy.Role, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		return "", "", false
	}
	role, valid := userpolicy.Parse(user.Role)
	if !valid {
		// Unknown role in session - fail closed.
		return "", "", false
	}
	return role, user.ID, true
}

// IsSuperAdmin reports whether the current request's user is a SuperAdmin.
func IsSuperAdmin(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role == userpolicy.SuperAdmin
}

// IsPrivileged reports whether the current request's user is a
// SuperAdmin or Admin.
func IsPrivileged(r *http.Request) bool {
	role, _, ok := UserCtx(r)
	return ok && role.IsPrivileged()
}
