package project

import (
	"context"
	"time"

	"github.com/google/uuid"

	"velanspaces/internal/model"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ListUpdates returns the project feed, newest first. Clients only see
// entries flagged client-viewable.
func (s *Service) ListUpdates(ctx context.Context, caller util.Principal, projectID string) ([]model.ProjectUpdate, error) {
	if err := s.authorize(caller, rbac.PermissionViewProject, projectID); err != nil {
		return nil, err
	}
	return s.updates.ListByProject(ctx, projectID, caller.Role == rbac.RoleClient)
}

// PostUpdate appends an immutable feed entry. PostedBy is the caller's
// display name, not an identity. A progressPercentage on the entry still
// overrides the project's completion percentage; the timeline-derived value
// is the preferred source and this override is kept for compatibility.
func (s *Service) PostUpdate(ctx context.Context, caller util.Principal, projectID string, update model.ProjectUpdate) (*model.ProjectUpdate, error) {
	if err := s.authorize(caller, rbac.PermissionPostUpdate, projectID); err != nil {
		return nil, err
	}

	update.ID = uuid.NewString()
	update.ProjectID = projectID
	update.PostedBy = caller.Name
	update.Role = caller.Role
	update.Comments = []model.Comment{}
	if update.Category == "" {
		update.Category = "General"
	}
	if update.Type == "" {
		update.Type = model.UpdateTypeMessage
	}

	if err := s.updates.Insert(ctx, &update); err != nil {
		return nil, err
	}
	return &update, nil
}

// AddComment appends a comment to a feed entry. Callers may supply the
// comment id; retries with the same id leave exactly one occurrence.
func (s *Service) AddComment(ctx context.Context, caller util.Principal, projectID, updateID string, c model.Comment) (*model.Comment, error) {
	if err := s.authorize(caller, rbac.PermissionCommentUpdate, projectID); err != nil {
		return nil, err
	}

	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Author = caller.Name
	c.Timestamp = time.Now().UTC()

	if err := s.updates.AppendComment(ctx, projectID, updateID, c); err != nil {
		return nil, err
	}
	return &c, nil
}
