package project

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"velanspaces/internal/model"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ErrApprovalNotRequired reports an approval attempt on a design that
// never asked for client sign-off.
var ErrApprovalNotRequired = errors.New("design does not require approval")

// ListDesigns returns the project's design documents, newest first.
func (s *Service) ListDesigns(ctx context.Context, caller util.Principal, projectID string) ([]model.DesignDocument, error) {
	if err := s.authorize(caller, rbac.PermissionViewProject, projectID); err != nil {
		return nil, err
	}
	return s.designs.ListByProject(ctx, projectID)
}

// AddDesign posts a design asset. The URL must already point at an
// uploaded file; upload failures abort before this call.
func (s *Service) AddDesign(ctx context.Context, caller util.Principal, projectID string, design model.DesignDocument) (*model.DesignDocument, error) {
	if err := s.authorize(caller, rbac.PermissionAddDesign, projectID); err != nil {
		return nil, err
	}

	design.ID = uuid.NewString()
	design.ProjectID = projectID
	design.PostedBy = caller.Name
	design.ApprovalStatus.Approved = false
	design.ApprovalStatus.Rejected = false

	if err := s.designs.Insert(ctx, &design); err != nil {
		return nil, err
	}
	return &design, nil
}

// ApproveDesign marks the design approved by the client. Unreachable when
// the design does not require approval.
func (s *Service) ApproveDesign(ctx context.Context, caller util.Principal, projectID, designID string) error {
	return s.setApproval(ctx, caller, projectID, designID, func(st *model.ApprovalStatus, now time.Time) {
		st.Approved = true
		st.Rejected = false
		st.ApprovedBy = caller.Name
		st.Timestamp = &now
	})
}

// RejectDesign records a client rejection with feedback, under the same
// approval-required guard as approval.
func (s *Service) RejectDesign(ctx context.Context, caller util.Principal, projectID, designID, feedback string) error {
	return s.setApproval(ctx, caller, projectID, designID, func(st *model.ApprovalStatus, now time.Time) {
		st.Approved = false
		st.Rejected = true
		st.Feedback = feedback
		st.Timestamp = &now
	})
}

func (s *Service) setApproval(ctx context.Context, caller util.Principal, projectID, designID string, apply func(*model.ApprovalStatus, time.Time)) error {
	if err := s.authorize(caller, rbac.PermissionApproveDesign, projectID); err != nil {
		return err
	}

	d, err := s.designs.GetByID(ctx, projectID, designID)
	if err != nil {
		return err
	}
	if !d.ApprovalStatus.Required {
		return ErrApprovalNotRequired
	}

	status := d.ApprovalStatus
	apply(&status, time.Now().UTC())
	return s.designs.SetApproval(ctx, projectID, designID, status)
}
