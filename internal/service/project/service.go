// Package project implements the lifecycle operations over project
// aggregates. Every operation takes the authenticated principal and
// enforces the role capability matrix server-side; the view layer gates
// nothing on its own.
package project

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// ErrScopeDenied reports a principal whose token scope does not cover the
// target project.
var ErrScopeDenied = errors.New("project not in caller scope")

const createRetries = 5

// designStore is the design persistence surface the service needs. The
// repository satisfies it; tests substitute a stub.
type designStore interface {
	ListByProject(ctx context.Context, projectID string) ([]model.DesignDocument, error)
	GetByID(ctx context.Context, projectID, designID string) (*model.DesignDocument, error)
	Insert(ctx context.Context, d *model.DesignDocument) error
	SetApproval(ctx context.Context, projectID, designID string, status model.ApprovalStatus) error
}

type Service struct {
	projects    *repository.ProjectRepository
	timeline    *repository.TimelineRepository
	rooms       *repository.RoomRepository
	updates     *repository.UpdateRepository
	designs     designStore
	settlements *repository.SettlementRepository
	logger      *zap.Logger
}

func NewService(
	projects *repository.ProjectRepository,
	timeline *repository.TimelineRepository,
	rooms *repository.RoomRepository,
	updates *repository.UpdateRepository,
	designs designStore,
	settlements *repository.SettlementRepository,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects:    projects,
		timeline:    timeline,
		rooms:       rooms,
		updates:     updates,
		designs:     designs,
		settlements: settlements,
		logger:      logger,
	}
}

// generateProjectID returns PRJ followed by five random decimal digits,
// matching the id convention clients bookmark and share.
func generateProjectID() string {
	return fmt.Sprintf("PRJ%05d", 10000+rand.Intn(90000))
}

// CreateProject creates a project with zeroed money fields and empty
// collections. Retries id generation on a collision instead of silently
// overwriting the colliding document.
func (s *Service) CreateProject(ctx context.Context, caller util.Principal, draft model.Project) (*model.Project, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionCreateProject); err != nil {
		return nil, err
	}

	p := draft
	p.CurrentSpend = 0
	p.IsComplete = false
	p.CompletionPercentage = 0
	if p.ManagerIDs == nil {
		p.ManagerIDs = []string{}
	}
	p.WorkerIDs = []string{}

	var err error
	for i := 0; i < createRetries; i++ {
		p.ID = generateProjectID()
		err = s.projects.Insert(ctx, &p)
		if err == nil {
			s.logger.Info("Project created",
				zap.String("id", p.ID),
				zap.String("project_name", p.ProjectName),
			)
			return &p, nil
		}
		if !errors.Is(err, repository.ErrDuplicateID) {
			return nil, err
		}
		s.logger.Warn("Project id collision, retrying", zap.String("id", p.ID))
	}
	return nil, err
}

// GetProject returns the project, honoring the caller's scope.
func (s *Service) GetProject(ctx context.Context, caller util.Principal, projectID string) (*model.Project, error) {
	if err := s.authorize(caller, rbac.PermissionViewProject, projectID); err != nil {
		return nil, err
	}
	return s.projects.GetByID(ctx, projectID)
}

// ListProjects returns the projects visible to the caller: HEAD sees all,
// managers and workers see their assigned projects, clients their single
// project.
func (s *Service) ListProjects(ctx context.Context, caller util.Principal) ([]*model.Project, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionViewProject); err != nil {
		return nil, err
	}

	switch caller.Role {
	case rbac.RoleHead:
		return s.projects.ListAll(ctx)
	case rbac.RoleManager:
		return s.projects.ListByManager(ctx, caller.Subject)
	case rbac.RoleWorker:
		return s.projects.ListByWorker(ctx, caller.Subject)
	default:
		p, err := s.projects.GetByID(ctx, caller.Subject)
		if err != nil {
			return nil, err
		}
		return []*model.Project{p}, nil
	}
}

// UpdateFinancials overwrites the estimate and budget. No floor is applied;
// back-office corrections may legitimately lower either value.
func (s *Service) UpdateFinancials(ctx context.Context, caller util.Principal, projectID string, estimatedCost, budget float64) error {
	if err := s.authorize(caller, rbac.PermissionEditFinancials, projectID); err != nil {
		return err
	}
	return s.projects.UpdateFinancials(ctx, projectID, estimatedCost, budget)
}

// UpdateDetails applies a partial overwrite of identity/contact fields.
func (s *Service) UpdateDetails(ctx context.Context, caller util.Principal, projectID string, d repository.ProjectDetails) error {
	if err := s.authorize(caller, rbac.PermissionEditDetails, projectID); err != nil {
		return err
	}
	return s.projects.UpdateDetails(ctx, projectID, d)
}

// AssignWorker adds a worker to the project's roster references,
// idempotently.
func (s *Service) AssignWorker(ctx context.Context, caller util.Principal, projectID, workerID string) error {
	if err := s.authorize(caller, rbac.PermissionAssignWorker, projectID); err != nil {
		return err
	}
	return s.projects.AssignWorker(ctx, projectID, workerID)
}

// AssignManager grants a manager access to the project.
func (s *Service) AssignManager(ctx context.Context, caller util.Principal, projectID, managerID string) error {
	if err := s.authorize(caller, rbac.PermissionEditDetails, projectID); err != nil {
		return err
	}
	return s.projects.AssignManager(ctx, projectID, managerID)
}

// authorize checks the permission and the token scope together.
func (s *Service) authorize(caller util.Principal, permission, projectID string) error {
	if err := rbac.CheckPermission(caller.Role, permission); err != nil {
		return err
	}
	if !caller.CanAccessProject(projectID) {
		return ErrScopeDenied
	}
	return nil
}
