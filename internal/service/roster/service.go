// Package roster manages the global worker and manager rosters shared by
// every project.
package roster

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

const (
	workersCacheKey = "roster:workers"
	workersCacheTTL = 30 * time.Second
)

type Service struct {
	repo   *repository.RosterRepository
	rdb    *redis.Client
	logger *zap.Logger
}

func NewService(repo *repository.RosterRepository, rdb *redis.Client, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		rdb:    rdb,
		logger: logger,
	}
}

// ListWorkers returns the global worker roster, cached briefly in redis:
// every dashboard view resolves assignment ids against it, so it is by far
// the hottest read. Cache misses and redis outages fall through to the
// database.
func (s *Service) ListWorkers(ctx context.Context, caller util.Principal) ([]model.Worker, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionViewProject); err != nil {
		return nil, err
	}

	if cached, err := s.rdb.Get(ctx, workersCacheKey).Bytes(); err == nil {
		var workers []model.Worker
		if err := json.Unmarshal(cached, &workers); err == nil {
			return workers, nil
		}
	}

	workers, err := s.repo.ListWorkers(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(workers); err == nil {
		if err := s.rdb.Set(ctx, workersCacheKey, data, workersCacheTTL).Err(); err != nil {
			s.logger.Warn("Failed to cache worker roster", zap.Error(err))
		}
	}
	return workers, nil
}

// GetWorker resolves a single roster worker; absent ids surface as
// repository.ErrNotFound, never a fault.
func (s *Service) GetWorker(ctx context.Context, caller util.Principal, workerID string) (*model.Worker, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionViewProject); err != nil {
		return nil, err
	}
	return s.repo.GetWorkerByID(ctx, workerID)
}

// AddWorker creates a roster worker. A caller-supplied id is honored (the
// quick-create flows use convenience ids); otherwise one is generated.
func (s *Service) AddWorker(ctx context.Context, caller util.Principal, w model.Worker) (*model.Worker, error) {
	if err := rbac.CheckPermission(caller.Role, rbac.PermissionManageRoster); err != nil {
		return nil, err
	}

	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.Type == "" {
		w.Type = model.WorkerTypeDaily
	}
	if w.AssignedProjects == nil {
		w.AssignedProjects = []string{}
	}

	if err := s.repo.AddWorker(ctx, &w); err != nil {
		return nil, err
	}
	s.invalidateWorkersCache(ctx)
	return &w, nil
}

// ListManagers returns the manager roster. HEAD only; hashes never leave
// the process (excluded from serialization).
func (s *Service) ListManagers(ctx context.Context, caller util.Principal) ([]model.Manager, error) {
	if caller.Role != rbac.RoleHead {
		return nil, &rbac.PermissionDeniedError{Role: caller.Role, Permission: rbac.PermissionManageRoster}
	}
	return s.repo.ListManagers(ctx)
}

// AddManager creates a login-capable manager. HEAD only. The plaintext
// password is hashed here; it is never persisted.
func (s *Service) AddManager(ctx context.Context, caller util.Principal, m model.Manager, password string) (*model.Manager, error) {
	if caller.Role != rbac.RoleHead {
		return nil, &rbac.PermissionDeniedError{Role: caller.Role, Permission: rbac.PermissionManageRoster}
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}
	m.PasswordHash = hash
	if m.ID == "" {
		m.ID = "MGR" + uuid.NewString()[:8]
	}

	if err := s.repo.AddManager(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) invalidateWorkersCache(ctx context.Context) {
	if err := s.rdb.Del(ctx, workersCacheKey).Err(); err != nil {
		s.logger.Warn("Failed to invalidate worker roster cache", zap.Error(err))
	}
}
