// internal/app/policy/userpolicy/roles.go
package userpolicy

import "strings"

// Role is one of the six access levels a user account can hold.
// The values are the exact strings stored on user records and sent
// over the wire, so they must never be renamed casually.
type Role string

const (
	SuperAdmin Role = "SuperAdmin"
	Admin      Role = "Admin"
	Staff      Role = "Staff"
	Partner    Role = "Partner"
	Agent      Role = "Agent"
	User       Role = "User"
)

// Roles lists every valid role from highest to lowest rank.
var Roles = []Role{SuperAdmin, Admin, Staff, Partner, Agent, User}

// ranks encodes the total ordering SuperAdmin > Admin > Staff > Partner
// > Agent > User. Current policy rules use identity checks against
// SuperAdmin/Admin only; the numeric rank exists for hierarchy
// comparisons that may come later.
var ranks = map[Role]int{
	SuperAdmin: 6,
	Admin:      5,
	Staff:      4,
	Partner:    3,
	Agent:      2,
	User:       1,
}

// categories maps each role to the categories the UI offers for it.
// Category remains advisory metadata; ValidCategory enforces membership
// server-side on writes.
var categories = map[Role][]string{
	SuperAdmin: {"Admin"},
	Admin:      {"Admin"},
	Staff:      {"Accounts", "Support", "Key Manager", "Research", "Media", "Sales"},
	Partner:    {"Supplier", "Service Provider"},
	Agent:      {"Distributor", "Franchise", "B2B"},
	User:       {"Default"},
}

// Valid reports whether r is one of the six enumerated roles.
func (r Role) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// Rank returns the role's position in the hierarchy (6 for SuperAdmin
// down to 1 for User), or 0 for an unknown role.
func (r Role) Rank() int {
	return ranks[r]
}

// IsPrivileged reports whether the role carries baseline administrative
// privilege. Only SuperAdmin and Admin may touch other users' records.
func (r Role) IsPrivileged() bool {
	return r == SuperAdmin || r == Admin
}

// Parse canonicalizes a role string case-insensitively. It returns the
// canonical Role and true, or ("", false) for anything outside the set.
func Parse(s string) (Role, bool) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// Categories returns the allowed categories for a role. The returned
// slice must not be mutated.
func Categories(r Role) []string {
	return categories[r]
}

// ValidCategory reports whether category is allowed for the given role.
// An empty category is always acceptable (records created by
// provisioning start with one).
func ValidCategory(r Role, category string) bool {
	if category == "" {
		return true
	}
	for _, c := range categories[r] {
		if c == category {
			return true
		}
	}
	return false
}

// DefaultCategory returns the category a freshly provisioned record
// gets: "Admin" for SuperAdmin, empty otherwise.
func DefaultCategory(r Role) string {
	if r == SuperAdmin {
		return "Admin"
	}
	return ""
}
