package authz

import "rently/client/internal/models"

// Action is a user-visible operation gated by role.
type Action string

const (
	ActionBrowse         Action = "browse"
	ActionEnquire        Action = "enquire"
	ActionCreateListing  Action = "create-listing"
	ActionEditListing    Action = "edit-listing"
	ActionDeleteListing  Action = "delete-listing"
	ActionViewEnquiries  Action = "view-enquiries"
	ActionManageUsers    Action = "manage-users"
	ActionChangeRole     Action = "change-role"
	ActionDeleteAccount  Action = "delete-account"
	ActionAdminDashboard Action = "admin-dashboard"
)

// rolePolicy maps each role to the actions it may perform. Unauthenticated
// callers (empty role) may only browse.
var rolePolicy = map[models.Role]map[Action]bool{
	models.RoleBuyer: {
		ActionBrowse:  true,
		ActionEnquire: true,
	},
	models.RoleOwner: {
		ActionBrowse:        true,
		ActionEnquire:       true,
		ActionCreateListing: true,
		ActionEditListing:   true,
		ActionDeleteListing: true,
		ActionViewEnquiries: true,
	},
	models.RoleAdmin: {
		ActionBrowse:         true,
		ActionEnquire:        true,
		ActionCreateListing:  true,
		ActionEditListing:    true,
		ActionDeleteListing:  true,
		ActionViewEnquiries:  true,
		ActionManageUsers:    true,
		ActionChangeRole:     true,
		ActionDeleteAccount:  true,
		ActionAdminDashboard: true,
	},
}

// resourceScoped actions additionally require ownership of the target
// resource, or the ADMIN role.
var resourceScoped = map[Action]bool{
	ActionEditListing:   true,
	ActionDeleteListing: true,
}

// selfDenied actions must never be performed against the caller's own
// account, regardless of role. An admin demoting or deleting themselves
// would lock the platform out of administration.
var selfDenied = map[Action]bool{
	ActionChangeRole:    true,
	ActionDeleteAccount: true,
}

// CanAccess evaluates whether a caller may perform an action. role is empty
// for unauthenticated callers. resourceOwnerID identifies the owner of the
// target resource (or the target user for account-level actions); pass zero
// when the action has no target.
//
// The gate is pure and holds no state, so it is safe to evaluate on every
// render and for every route.
func CanAccess(role models.Role, userID int64, action Action, resourceOwnerID int64) bool {
	if role == "" {
		return action == ActionBrowse
	}

	allowed, ok := rolePolicy[role]
	if !ok || !allowed[action] {
		return false
	}

	if selfDenied[action] && resourceOwnerID == userID {
		return false
	}

	if resourceScoped[action] && resourceOwnerID != 0 {
		return resourceOwnerID == userID || role == models.RoleAdmin
	}

	return true
}
