// Package auth issues role-scoped tokens. HEAD and MANAGER logins verify
// a bcrypt hash; CLIENT and WORKER logins verify that the presented id
// exists and scope the token to the matching projects.
package auth

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/pkg/config"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type projectDirectory interface {
	GetByID(ctx context.Context, id string) (*model.Project, error)
	ListByManager(ctx context.Context, managerID string) ([]*model.Project, error)
	ListByWorker(ctx context.Context, workerID string) ([]*model.Project, error)
}

type rosterDirectory interface {
	GetManagerByID(ctx context.Context, id string) (*model.Manager, error)
	GetWorkerByID(ctx context.Context, id string) (*model.Worker, error)
}

type Service struct {
	projects projectDirectory
	roster   rosterDirectory
	jwtCfg   config.JWTConfig
	authCfg  config.AuthConfig
	logger   *zap.Logger
}

func NewService(
	projects projectDirectory,
	roster rosterDirectory,
	jwtCfg config.JWTConfig,
	authCfg config.AuthConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		projects: projects,
		roster:   roster,
		jwtCfg:   jwtCfg,
		authCfg:  authCfg,
		logger:   logger,
	}
}

// Login authenticates per role and returns a signed token.
func (s *Service) Login(ctx context.Context, role, id, password string) (string, util.Principal, error) {
	var p util.Principal
	var err error

	switch role {
	case rbac.RoleHead:
		p, err = s.loginHead(id, password)
	case rbac.RoleManager:
		p, err = s.loginManager(ctx, id, password)
	case rbac.RoleClient:
		p, err = s.loginClient(ctx, id)
	case rbac.RoleWorker:
		p, err = s.loginWorker(ctx, id)
	default:
		return "", util.Principal{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", util.Principal{}, err
	}

	token, err := util.GenerateJWT(p, s.jwtCfg.Secret, s.jwtCfg.TTL)
	if err != nil {
		return "", util.Principal{}, err
	}

	s.logger.Info("Login succeeded",
		zap.String("role", p.Role),
		zap.String("subject", p.Subject),
	)
	return token, p, nil
}

func (s *Service) loginHead(id, password string) (util.Principal, error) {
	if id != s.authCfg.HeadID || !util.CheckPassword(password, s.authCfg.HeadPasswordHash) {
		return util.Principal{}, ErrInvalidCredentials
	}
	return util.Principal{
		Subject: id,
		Name:    "Admin",
		Role:    rbac.RoleHead,
		Scope:   []string{"*"},
	}, nil
}

// loginManager scopes the token from projects.manager_ids, the column
// AssignManager and project creation actually write. The roster row only
// authenticates.
func (s *Service) loginManager(ctx context.Context, id, password string) (util.Principal, error) {
	m, err := s.roster.GetManagerByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.Principal{}, ErrInvalidCredentials
		}
		return util.Principal{}, err
	}
	if !util.CheckPassword(password, m.PasswordHash) {
		return util.Principal{}, ErrInvalidCredentials
	}

	scope, err := s.projectScope(ctx, s.projects.ListByManager, m.ID)
	if err != nil {
		return util.Principal{}, err
	}
	return util.Principal{
		Subject: m.ID,
		Name:    m.Name,
		Role:    rbac.RoleManager,
		Scope:   scope,
	}, nil
}

// loginClient accepts a valid project id as the credential: the id is the
// share link. The token is scoped to that single project.
func (s *Service) loginClient(ctx context.Context, projectID string) (util.Principal, error) {
	p, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.Principal{}, ErrInvalidCredentials
		}
		return util.Principal{}, err
	}
	return util.Principal{
		Subject: p.ID,
		Name:    p.ClientName,
		Role:    rbac.RoleClient,
		Scope:   []string{p.ID},
	}, nil
}

func (s *Service) loginWorker(ctx context.Context, workerID string) (util.Principal, error) {
	w, err := s.roster.GetWorkerByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return util.Principal{}, ErrInvalidCredentials
		}
		return util.Principal{}, err
	}

	scope, err := s.projectScope(ctx, s.projects.ListByWorker, w.ID)
	if err != nil {
		return util.Principal{}, err
	}
	return util.Principal{
		Subject: w.ID,
		Name:    w.Name,
		Role:    rbac.RoleWorker,
		Scope:   scope,
	}, nil
}

func (s *Service) projectScope(ctx context.Context, list func(context.Context, string) ([]*model.Project, error), id string) ([]string, error) {
	projects, err := list(ctx, id)
	if err != nil {
		return nil, err
	}
	scope := make([]string, 0, len(projects))
	for _, p := range projects {
		scope = append(scope, p.ID)
	}
	return scope, nil
}
