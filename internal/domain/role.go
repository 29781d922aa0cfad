package domain

import "time"

// Permission names a single capability gated by a role.
type Permission string

const (
	PermViewTests     Permission = "tests.view"
	PermEditTests     Permission = "tests.edit"
	PermDeleteTests   Permission = "tests.delete"
	PermRunAnalysis   Permission = "analysis.run"
	PermManageMembers Permission = "members.manage"
	PermManageRoles   Permission = "roles.manage"
	PermManageOrg     Permission = "org.manage"
)

// AllPermissions lists every permission in display order.
var AllPermissions = []Permission{
	PermViewTests,
	PermEditTests,
	PermDeleteTests,
	PermRunAnalysis,
	PermManageMembers,
	PermManageRoles,
	PermManageOrg,
}

// Label returns a human readable name for the permission.
func (p Permission) Label() string {
	switch p {
	case PermViewTests:
		return "View tests"
	case PermEditTests:
		return "Create and edit tests"
	case PermDeleteTests:
		return "Delete tests"
	case PermRunAnalysis:
		return "Run analysis"
	case PermManageMembers:
		return "Manage members"
	case PermManageRoles:
		return "Manage roles"
	case PermManageOrg:
		return "Manage organization"
	default:
		return string(p)
	}
}

// PermissionSet mirrors the boolean permission columns of the roles table.
type PermissionSet struct {
	ViewTests     bool
	EditTests     bool
	DeleteTests   bool
	RunAnalysis   bool
	ManageMembers bool
	ManageRoles   bool
	ManageOrg     bool
}

// Has reports whether the set grants p. Unknown permissions are never granted.
func (s PermissionSet) Has(p Permission) bool {
	switch p {
	case PermViewTests:
		return s.ViewTests
	case PermEditTests:
		return s.EditTests
	case PermDeleteTests:
		return s.DeleteTests
	case PermRunAnalysis:
		return s.RunAnalysis
	case PermManageMembers:
		return s.ManageMembers
	case PermManageRoles:
		return s.ManageRoles
	case PermManageOrg:
		return s.ManageOrg
	default:
		return false
	}
}

// List returns the granted permissions in AllPermissions order.
func (s PermissionSet) List() []Permission {
	var out []Permission
	for _, p := range AllPermissions {
		if s.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Covers reports whether every permission granted by other is also granted by s.
func (s PermissionSet) Covers(other PermissionSet) bool {
	for _, p := range other.List() {
		if !s.Has(p) {
			return false
		}
	}
	return true
}

// PermissionSetFrom builds a set from permission names; unknown names are ignored.
func PermissionSetFrom(perms []Permission) PermissionSet {
	var s PermissionSet
	for _, p := range perms {
		switch p {
		case PermViewTests:
			s.ViewTests = true
		case PermEditTests:
			s.EditTests = true
		case PermDeleteTests:
			s.DeleteTests = true
		case PermRunAnalysis:
			s.RunAnalysis = true
		case PermManageMembers:
			s.ManageMembers = true
		case PermManageRoles:
			s.ManageRoles = true
		case PermManageOrg:
			s.ManageOrg = true
		}
	}
	return s
}

// FullPermissions grants everything.
func FullPermissions() PermissionSet {
	return PermissionSetFrom(AllPermissions)
}

type Role struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string
	Permissions    PermissionSet
	IsSystem       bool
	CreatedAt      time.Time
}

const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// DefaultRoles returns the system roles seeded into every new organization.
// IDs and organization are left for the caller to fill in.
func DefaultRoles() []Role {
	admin := FullPermissions()
	admin.ManageOrg = false

	return []Role{
		{
			Name:        RoleOwner,
			Description: "Full control of the organization",
			Permissions: FullPermissions(),
			IsSystem:    true,
		},
		{
			Name:        RoleAdmin,
			Description: "Manage tests, members and roles",
			Permissions: admin,
			IsSystem:    true,
		},
		{
			Name:        RoleEditor,
			Description: "Create and edit tests, run analysis",
			Permissions: PermissionSetFrom([]Permission{PermViewTests, PermEditTests, PermRunAnalysis}),
			IsSystem:    true,
		},
		{
			Name:        RoleViewer,
			Description: "Read-only access to tests",
			Permissions: PermissionSetFrom([]Permission{PermViewTests}),
			IsSystem:    true,
		},
	}
}
