package project

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

type stubDesignStore struct {
	designs      map[string]*model.DesignDocument
	approvalSets int
	lastStatus   model.ApprovalStatus
}

func (s *stubDesignStore) ListByProject(context.Context, string) ([]model.DesignDocument, error) {
	out := make([]model.DesignDocument, 0, len(s.designs))
	for _, d := range s.designs {
		out = append(out, *d)
	}
	return out, nil
}

func (s *stubDesignStore) GetByID(_ context.Context, _, designID string) (*model.DesignDocument, error) {
	d, ok := s.designs[designID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := *d
	return &copied, nil
}

func (s *stubDesignStore) Insert(_ context.Context, d *model.DesignDocument) error {
	s.designs[d.ID] = d
	return nil
}

func (s *stubDesignStore) SetApproval(_ context.Context, _, designID string, status model.ApprovalStatus) error {
	s.approvalSets++
	s.lastStatus = status
	s.designs[designID].ApprovalStatus = status
	return nil
}

func designTestService(store *stubDesignStore) *Service {
	return &Service{designs: store, logger: zap.NewNop()}
}

func clientPrincipal() util.Principal {
	return util.Principal{Subject: "PRJ12345", Name: "Anand", Role: rbac.RoleClient, Scope: []string{"PRJ12345"}}
}

func TestApproveDesign(t *testing.T) {
	store := &stubDesignStore{designs: map[string]*model.DesignDocument{
		"d1": {ID: "d1", ProjectID: "PRJ12345", ApprovalStatus: model.ApprovalStatus{Required: true}},
	}}
	s := designTestService(store)

	require.NoError(t, s.ApproveDesign(context.Background(), clientPrincipal(), "PRJ12345", "d1"))

	assert.Equal(t, 1, store.approvalSets)
	assert.True(t, store.lastStatus.Approved)
	assert.False(t, store.lastStatus.Rejected)
	assert.Equal(t, "Anand", store.lastStatus.ApprovedBy)
	assert.NotNil(t, store.lastStatus.Timestamp)
}

func TestRejectDesign(t *testing.T) {
	store := &stubDesignStore{designs: map[string]*model.DesignDocument{
		"d1": {ID: "d1", ProjectID: "PRJ12345", ApprovalStatus: model.ApprovalStatus{Required: true}},
	}}
	s := designTestService(store)

	require.NoError(t, s.RejectDesign(context.Background(), clientPrincipal(), "PRJ12345", "d1", "wrong shade"))

	assert.True(t, store.lastStatus.Rejected)
	assert.False(t, store.lastStatus.Approved)
	assert.Equal(t, "wrong shade", store.lastStatus.Feedback)
}

func TestApprovalGuardWhenNotRequired(t *testing.T) {
	store := &stubDesignStore{designs: map[string]*model.DesignDocument{
		"d1": {ID: "d1", ProjectID: "PRJ12345", ApprovalStatus: model.ApprovalStatus{Required: false}},
	}}
	s := designTestService(store)

	err := s.ApproveDesign(context.Background(), clientPrincipal(), "PRJ12345", "d1")
	assert.ErrorIs(t, err, ErrApprovalNotRequired)

	err = s.RejectDesign(context.Background(), clientPrincipal(), "PRJ12345", "d1", "nope")
	assert.ErrorIs(t, err, ErrApprovalNotRequired)

	assert.Zero(t, store.approvalSets, "guard must fire before any write")
}

func TestApprovalAuthz(t *testing.T) {
	store := &stubDesignStore{designs: map[string]*model.DesignDocument{
		"d1": {ID: "d1", ProjectID: "PRJ12345", ApprovalStatus: model.ApprovalStatus{Required: true}},
	}}
	s := designTestService(store)

	// only the client approves; managers and HEAD lack the permission
	manager := util.Principal{Subject: "MGR1", Role: rbac.RoleManager, Scope: []string{"PRJ12345"}}
	var denied *rbac.PermissionDeniedError
	assert.ErrorAs(t, s.ApproveDesign(context.Background(), manager, "PRJ12345", "d1"), &denied)

	// right role, wrong project scope
	otherClient := util.Principal{Subject: "PRJ67890", Role: rbac.RoleClient, Scope: []string{"PRJ67890"}}
	assert.ErrorIs(t, s.ApproveDesign(context.Background(), otherClient, "PRJ12345", "d1"), ErrScopeDenied)

	assert.Zero(t, store.approvalSets)
}
