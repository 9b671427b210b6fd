package rbac

// Permissions for project operations.
const (
	PermissionCreateProject    = "project:create"
	PermissionEditFinancials   = "project:edit_financials"
	PermissionEditDetails      = "project:edit_details"
	PermissionAssignWorker     = "project:assign_worker"
	PermissionManageRooms      = "project:manage_rooms"
	PermissionMutateTimeline   = "project:mutate_timeline"
	PermissionPostUpdate       = "update:post"
	PermissionCommentUpdate    = "update:comment"
	PermissionAddDesign        = "design:add"
	PermissionApproveDesign    = "design:approve"
	PermissionRecordSettlement = "settlement:record"
	PermissionViewProject      = "project:view"
	PermissionManageRoster     = "roster:manage"
)

// Roles as seen by the dashboard.
const (
	RoleHead    = "HEAD"
	RoleManager = "MANAGER"
	RoleClient  = "CLIENT"
	RoleWorker  = "WORKER"
)

var rolePermissions = map[string][]string{
	RoleHead: {
		PermissionCreateProject,
		PermissionEditFinancials,
		PermissionEditDetails,
		PermissionAssignWorker,
		PermissionManageRooms,
		PermissionMutateTimeline,
		PermissionPostUpdate,
		PermissionCommentUpdate,
		PermissionAddDesign,
		PermissionRecordSettlement,
		PermissionViewProject,
		PermissionManageRoster,
	},
	RoleManager: {
		PermissionEditDetails,
		PermissionAssignWorker,
		PermissionManageRooms,
		PermissionMutateTimeline,
		PermissionPostUpdate,
		PermissionCommentUpdate,
		PermissionAddDesign,
		PermissionViewProject,
		PermissionManageRoster,
	},
	RoleClient: {
		PermissionCommentUpdate,
		PermissionApproveDesign,
		PermissionViewProject,
	},
	RoleWorker: {
		PermissionViewProject,
	},
}

// HasPermission reports whether a role carries the given permission.
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission returns an error when the role lacks the permission.
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
