package project

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

func TestGenerateProjectIDFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^PRJ\d{5}$`)
	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id := generateProjectID()
		assert.Regexp(t, pattern, id)
		seen[id] = true
	}
	// ids are random draws, not a counter
	assert.Greater(t, len(seen), 1)
}

func TestAuthorize(t *testing.T) {
	s := &Service{}

	head := util.Principal{Subject: "admin", Role: rbac.RoleHead, Scope: []string{"*"}}
	assert.NoError(t, s.authorize(head, rbac.PermissionEditFinancials, "PRJ12345"))

	manager := util.Principal{Subject: "MGR1", Role: rbac.RoleManager, Scope: []string{"PRJ12345"}}
	assert.NoError(t, s.authorize(manager, rbac.PermissionMutateTimeline, "PRJ12345"))

	// right permission, wrong project
	err := s.authorize(manager, rbac.PermissionMutateTimeline, "PRJ99999")
	assert.ErrorIs(t, err, ErrScopeDenied)

	// right project, missing permission
	err = s.authorize(manager, rbac.PermissionEditFinancials, "PRJ12345")
	var denied *rbac.PermissionDeniedError
	assert.ErrorAs(t, err, &denied)

	client := util.Principal{Subject: "PRJ12345", Role: rbac.RoleClient, Scope: []string{"PRJ12345"}}
	assert.NoError(t, s.authorize(client, rbac.PermissionViewProject, "PRJ12345"))
	assert.ErrorIs(t, s.authorize(client, rbac.PermissionViewProject, "PRJ99999"), ErrScopeDenied)
}
