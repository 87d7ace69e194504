// Package userpolicy is the single authorization policy evaluator for
// user management. Every mutating endpoint calls these predicates
// instead of re-implementing role checks inline, so the rules cannot
// drift between call sites.
//
// Authorization rules:
//   - Only SuperAdmins and Admins can list or mutate other users' records
//   - Admins can never assign the SuperAdmin role
//   - Admins can never modify a SuperAdmin's record (role, category,
//     profile) and can never deactivate one; reactivating is allowed
//   - Admins may delete only Staff, Partner, and Agent records;
//     SuperAdmins may delete anyone
//
// All predicates are pure: no I/O, no clock, no request state. Callers
// fetch the target record first and hand in the roles.
package userpolicy

// Reason identifies why an operation was denied. The zero value ""
// means not denied.
type Reason string

const (
	// ReasonForbidden: the actor lacks any privilege for the operation.
	ReasonForbidden Reason = "Forbidden"
	// ReasonCannotAssignSuperAdmin: an Admin tried to promote someone to SuperAdmin.
	ReasonCannotAssignSuperAdmin Reason = "CannotAssignSuperAdmin"
	// ReasonCannotModifySuperAdmin: an Admin tried to change a SuperAdmin's record.
	ReasonCannotModifySuperAdmin Reason = "CannotModifySuperAdmin"
	// ReasonCannotDeactivateSuperAdmin: an Admin tried to set isActive=false on a SuperAdmin.
	ReasonCannotDeactivateSuperAdmin Reason = "CannotDeactivateSuperAdmin"
	// ReasonAdminDeleteRestricted: an Admin tried to delete a record outside Staff/Partner/Agent.
	ReasonAdminDeleteRestricted Reason = "AdminDeleteRestricted"
	// ReasonNotFound: the target record does not exist.
	ReasonNotFound Reason = "NotFound"
)

// Message returns the human-readable denial text shown to operators.
func (r Reason) Message() string {
	switch r {
	case ReasonForbidden:
		return "You do not have permission to perform this action"
	case ReasonCannotAssignSuperAdmin:
		return "Admins cannot assign SuperAdmin"
	case ReasonCannotModifySuperAdmin:
		return "Admins cannot modify SuperAdmin"
	case ReasonCannotDeactivateSuperAdmin:
		return "Admins cannot deactivate SuperAdmin"
	case ReasonAdminDeleteRestricted:
		return "Admins can only delete Staff, Partner, and Agent users"
	case ReasonNotFound:
		return "User not found"
	}
	return string(r)
}

// Decision is the outcome of a policy evaluation.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Reason: r} }

// CanAdministerUsers is the shared first rule of every user-management
// operation: only SuperAdmins and Admins get past it. Handlers call it
// before touching the store so unprivileged actors are rejected even
// when a request names no concrete field.
func CanAdministerUsers(acting Role) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	return allow()
}

// CanListUsers decides whether acting may read the full user list.
func CanListUsers(acting Role) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	return allow()
}

// CanChangeRole decides whether acting may change a target's role from
// targetRole to newRole. Denials are evaluated in order; the first
// match wins.
func CanChangeRole(acting, targetRole, newRole Role) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	if acting == Admin && newRole == SuperAdmin {
		return deny(ReasonCannotAssignSuperAdmin)
	}
	// An Admin cannot touch a SuperAdmin's role regardless of the new value.
	if acting == Admin && targetRole == SuperAdmin {
		return deny(ReasonCannotModifySuperAdmin)
	}
	return allow()
}

// CanChangeCategory decides whether acting may change a target's category.
func CanChangeCategory(acting, targetRole Role) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	if acting == Admin && targetRole == SuperAdmin {
		return deny(ReasonCannotModifySuperAdmin)
	}
	return allow()
}

// CanChangeActive decides whether acting may set a target's isActive
// flag to newValue.
//
// Note the asymmetry: an Admin is blocked from deactivating a
// SuperAdmin but not from reactivating one. That mirrors the observed
// production behavior and is pinned by tests; do not "fix" it here
// without a product decision.
func CanChangeActive(acting, targetRole Role, newValue bool) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	if acting == Admin && targetRole == SuperAdmin && !newValue {
		return deny(ReasonCannotDeactivateSuperAdmin)
	}
	return allow()
}

// CanChangeProfile decides whether acting may edit a target's profile
// fields through the admin surface. Self-service profile edits do not
// go through this check.
func CanChangeProfile(acting, targetRole Role) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	if acting == Admin && targetRole == SuperAdmin {
		return deny(ReasonCannotModifySuperAdmin)
	}
	return allow()
}

// adminDeletable is the explicit allow-list of roles an Admin may
// delete. Kept as an allow-list rather than a deny-list so a future
// seventh role fails closed.
var adminDeletable = map[Role]bool{
	Staff:   true,
	Partner: true,
	Agent:   true,
}

// CanDelete decides whether acting may permanently delete the target
// record. exists reports whether the target record was found.
func CanDelete(acting, targetRole Role, exists bool) Decision {
	if !acting.IsPrivileged() {
		return deny(ReasonForbidden)
	}
	if !exists {
		return deny(ReasonNotFound)
	}
	if acting == Admin && (targetRole == SuperAdmin || targetRole == Admin) {
		return deny(ReasonAdminDeleteRestricted)
	}
	if acting == Admin && !adminDeletable[targetRole] {
		return deny(ReasonAdminDeleteRestricted)
	}
	return allow()
}
