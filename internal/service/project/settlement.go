package project

import (
	"context"

	"github.com/google/uuid"

	"velanspaces/internal/model"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ListSettlements returns the project's ledger by payment date, newest
// first.
func (s *Service) ListSettlements(ctx context.Context, caller util.Principal, projectID string) ([]model.Settlement, error) {
	if err := s.authorize(caller, rbac.PermissionViewProject, projectID); err != nil {
		return nil, err
	}
	return s.settlements.ListByProject(ctx, projectID)
}

// RecordSettlement appends a ledger entry and increments the project's
// running spend atomically. Settlements are never edited or deleted.
func (s *Service) RecordSettlement(ctx context.Context, caller util.Principal, projectID string, settlement model.Settlement) (*model.Settlement, error) {
	if err := s.authorize(caller, rbac.PermissionRecordSettlement, projectID); err != nil {
		return nil, err
	}

	settlement.ID = uuid.NewString()
	settlement.ProjectID = projectID
	settlement.CreatedBy = caller.Subject

	if err := s.settlements.Record(ctx, &settlement); err != nil {
		return nil, err
	}
	return &settlement, nil
}
