package rbac

import "cryptex-console/internal/core/domain"

// Role represents an admin console role tag
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleOperator   Role = "operator"
	RoleAuditor    Role = "auditor"
	RoleViewer     Role = "viewer"
)

// Permission represents one allowed action on one resource family
type Permission string

const (
	PermViewDashboard Permission = "view-dashboard"

	PermViewUsers   Permission = "view-users"
	PermCreateUser  Permission = "create-user"
	PermUpdateUser  Permission = "update-user"
	PermDeleteUser  Permission = "delete-user"

	PermViewOrders  Permission = "view-orders"
	PermCancelOrder Permission = "cancel-order"

	PermViewMarket Permission = "view-market"

	PermViewSettings   Permission = "view-settings"
	PermUpdateSettings Permission = "update-settings"

	PermViewAudit Permission = "view-audit"

	PermManageMaintenance Permission = "manage-maintenance"
	PermRunBackup         Permission = "run-backup"
)

// allPermissions is the permission universe in declaration order.
// Super-admin's set is derived from this slice, so adding a permission
// here is enough to grant it.
var allPermissions = []Permission{
	PermViewDashboard,
	PermViewUsers,
	PermCreateUser,
	PermUpdateUser,
	PermDeleteUser,
	PermViewOrders,
	PermCancelOrder,
	PermViewMarket,
	PermViewSettings,
	PermUpdateSettings,
	PermViewAudit,
	PermManageMaintenance,
	PermRunBackup,
}

// rolePermissions maps each role to its permission set. Super-admin is
// intentionally absent: its set is always the full universe.
var rolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermViewDashboard,
		PermViewUsers, PermCreateUser, PermUpdateUser, PermDeleteUser,
		PermViewOrders, PermCancelOrder,
		PermViewMarket,
		PermViewSettings, PermUpdateSettings,
		PermViewAudit,
	},
	RoleOperator: {
		PermViewDashboard,
		PermViewUsers,
		PermViewOrders, PermCancelOrder,
		PermViewMarket,
	},
	RoleAuditor: {
		PermViewDashboard,
		PermViewUsers,
		PermViewOrders,
		PermViewMarket,
		PermViewAudit,
	},
	RoleViewer: {
		PermViewDashboard,
		PermViewMarket,
	},
}

// resourceActions maps a (resource, CRUD verb) pair onto the permission
// that gates it.
var resourceActions = map[string]map[string]Permission{
	"users": {
		"read":   PermViewUsers,
		"create": PermCreateUser,
		"update": PermUpdateUser,
		"delete": PermDeleteUser,
	},
	"orders": {
		"read":   PermViewOrders,
		"delete": PermCancelOrder,
	},
	"market": {
		"read": PermViewMarket,
	},
	"settings": {
		"read":   PermViewSettings,
		"update": PermUpdateSettings,
	},
	"audit": {
		"read": PermViewAudit,
	},
	"maintenance": {
		"update": PermManageMaintenance,
	},
	"backups": {
		"create": PermRunBackup,
	},
}

// AllPermissions returns the full permission universe.
func AllPermissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// RolesInEffect returns the user's role tags as roles. Inactive users
// have no roles in effect regardless of what their record carries.
func RolesInEffect(u *domain.User) []Role {
	if u == nil || !u.IsActive {
		return nil
	}
	roles := make([]Role, 0, len(u.Roles))
	for _, tag := range u.Roles {
		roles = append(roles, Role(tag))
	}
	return roles
}

// HasRole reports whether the role is in effect for the user.
func HasRole(u *domain.User, role Role) bool {
	for _, r := range RolesInEffect(u) {
		if r == role {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of the given roles is in effect.
func HasAnyRole(u *domain.User, roles ...Role) bool {
	for _, role := range roles {
		if HasRole(u, role) {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the user is an active super-admin.
func IsSuperAdmin(u *domain.User) bool {
	return HasRole(u, RoleSuperAdmin)
}

// IsAdmin reports whether the user is an active admin or super-admin.
func IsAdmin(u *domain.User) bool {
	return HasAnyRole(u, RoleAdmin, RoleSuperAdmin)
}

// UserPermissions returns the deduplicated union of the permission sets
// of the user's roles, in universe order. Inactive users get nothing.
func UserPermissions(u *domain.User) []Permission {
	roles := RolesInEffect(u)
	if len(roles) == 0 {
		return nil
	}

	granted := make(map[Permission]bool)
	for _, role := range roles {
		if role == RoleSuperAdmin {
			return AllPermissions()
		}
		for _, p := range rolePermissions[role] {
			granted[p] = true
		}
	}

	out := make([]Permission, 0, len(granted))
	for _, p := range allPermissions {
		if granted[p] {
			out = append(out, p)
		}
	}
	return out
}

// HasPermission reports whether the user's effective permission set
// contains the given permission.
func HasPermission(u *domain.User, p Permission) bool {
	for _, role := range RolesInEffect(u) {
		if role == RoleSuperAdmin {
			return true
		}
		for _, rp := range rolePermissions[role] {
			if rp == p {
				return true
			}
		}
	}
	return false
}

// HasAnyPermission reports whether the user holds at least one of the
// given permissions.
func HasAnyPermission(u *domain.User, perms ...Permission) bool {
	for _, p := range perms {
		if HasPermission(u, p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether the user holds every one of the
// given permissions.
func HasAllPermissions(u *domain.User, perms ...Permission) bool {
	for _, p := range perms {
		if !HasPermission(u, p) {
			return false
		}
	}
	return true
}

// CanAccessResource maps a (resource, action) pair to a permission via
// the lookup table and delegates to HasPermission. Unknown pairs are
// denied.
func CanAccessResource(u *domain.User, resource, action string) bool {
	actions, ok := resourceActions[resource]
	if !ok {
		return false
	}
	p, ok := actions[action]
	if !ok {
		return false
	}
	return HasPermission(u, p)
}
