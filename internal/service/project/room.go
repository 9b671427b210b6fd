package project

import (
	"context"

	"github.com/google/uuid"

	"velanspaces/internal/model"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ListRooms returns the project's rooms sorted by name.
func (s *Service) ListRooms(ctx context.Context, caller util.Principal, projectID string) ([]model.Room, error) {
	if err := s.authorize(caller, rbac.PermissionViewProject, projectID); err != nil {
		return nil, err
	}
	return s.rooms.ListByProject(ctx, projectID)
}

// AddRoom creates a named space within the project.
func (s *Service) AddRoom(ctx context.Context, caller util.Principal, projectID string, room model.Room) (*model.Room, error) {
	if err := s.authorize(caller, rbac.PermissionManageRooms, projectID); err != nil {
		return nil, err
	}

	room.ID = uuid.NewString()
	room.ProjectID = projectID
	if room.AssignedWorkerIDs == nil {
		room.AssignedWorkerIDs = []string{}
	}

	if err := s.rooms.Insert(ctx, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// UpdateRoom overwrites the room, assignment set included. The set is
// replaced wholesale, matching the room editor's save semantics.
func (s *Service) UpdateRoom(ctx context.Context, caller util.Principal, projectID string, room model.Room) error {
	if err := s.authorize(caller, rbac.PermissionManageRooms, projectID); err != nil {
		return err
	}
	room.ProjectID = projectID
	if room.AssignedWorkerIDs == nil {
		room.AssignedWorkerIDs = []string{}
	}
	return s.rooms.Update(ctx, &room)
}
