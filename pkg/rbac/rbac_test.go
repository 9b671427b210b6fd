package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeadHasEveryProjectPermission(t *testing.T) {
	for _, p := range []string{
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
	} {
		assert.True(t, HasPermission(RoleHead, p), p)
	}
}

func TestManagerFinancialBoundary(t *testing.T) {
	// managers run the site but never touch money
	assert.False(t, HasPermission(RoleManager, PermissionCreateProject))
	assert.False(t, HasPermission(RoleManager, PermissionEditFinancials))
	assert.False(t, HasPermission(RoleManager, PermissionRecordSettlement))

	assert.True(t, HasPermission(RoleManager, PermissionMutateTimeline))
	assert.True(t, HasPermission(RoleManager, PermissionPostUpdate))
	assert.True(t, HasPermission(RoleManager, PermissionAddDesign))
	assert.True(t, HasPermission(RoleManager, PermissionAssignWorker))
}

func TestClientPermissions(t *testing.T) {
	assert.True(t, HasPermission(RoleClient, PermissionViewProject))
	assert.True(t, HasPermission(RoleClient, PermissionCommentUpdate))
	assert.True(t, HasPermission(RoleClient, PermissionApproveDesign))

	assert.False(t, HasPermission(RoleClient, PermissionPostUpdate))
	assert.False(t, HasPermission(RoleClient, PermissionMutateTimeline))
	assert.False(t, HasPermission(RoleClient, PermissionEditFinancials))
}

func TestOnlyClientApprovesDesigns(t *testing.T) {
	assert.True(t, HasPermission(RoleClient, PermissionApproveDesign))
	assert.False(t, HasPermission(RoleHead, PermissionApproveDesign))
	assert.False(t, HasPermission(RoleManager, PermissionApproveDesign))
	assert.False(t, HasPermission(RoleWorker, PermissionApproveDesign))
}

func TestWorkerIsReadOnly(t *testing.T) {
	assert.True(t, HasPermission(RoleWorker, PermissionViewProject))
	assert.False(t, HasPermission(RoleWorker, PermissionPostUpdate))
	assert.False(t, HasPermission(RoleWorker, PermissionCommentUpdate))
	assert.False(t, HasPermission(RoleWorker, PermissionMutateTimeline))
}

func TestUnknownRoleDeniedEverything(t *testing.T) {
	assert.False(t, HasPermission("INTERN", PermissionViewProject))
	assert.False(t, HasPermission("", PermissionViewProject))
}

func TestCheckPermissionError(t *testing.T) {
	err := CheckPermission(RoleWorker, PermissionPostUpdate)
	assert.Error(t, err)

	var denied *PermissionDeniedError
	assert.ErrorAs(t, err, &denied)
	assert.Equal(t, RoleWorker, denied.Role)
	assert.Equal(t, PermissionPostUpdate, denied.Permission)

	assert.NoError(t, CheckPermission(RoleHead, PermissionCreateProject))
}
