package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/pkg/config"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

type fakeProjects struct {
	projects map[string]*model.Project
}

func (f *fakeProjects) GetByID(_ context.Context, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeProjects) ListByManager(_ context.Context, managerID string) ([]*model.Project, error) {
	var out []*model.Project
	for _, p := range f.projects {
		for _, id := range p.ManagerIDs {
			if id == managerID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

func (f *fakeProjects) ListByWorker(_ context.Context, workerID string) ([]*model.Project, error) {
	var out []*model.Project
	for _, p := range f.projects {
		for _, id := range p.WorkerIDs {
			if id == workerID {
				out = append(out, p)
			}
		}
	}
	return out, nil
}

type fakeRoster struct {
	managers map[string]*model.Manager
	workers  map[string]*model.Worker
}

func (f *fakeRoster) GetManagerByID(_ context.Context, id string) (*model.Manager, error) {
	m, ok := f.managers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return m, nil
}

func (f *fakeRoster) GetWorkerByID(_ context.Context, id string) (*model.Worker, error) {
	w, ok := f.workers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return w, nil
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	managerHash, err := util.HashPassword("manager-pass")
	require.NoError(t, err)
	headHash, err := util.HashPassword("12345")
	require.NoError(t, err)

	projects := &fakeProjects{projects: map[string]*model.Project{
		"PRJ12345": {
			ID:         "PRJ12345",
			ClientName: "Anand",
			ManagerIDs: []string{"MGR1"},
			WorkerIDs:  []string{"w1"},
		},
		"PRJ67890": {
			ID:         "PRJ67890",
			ClientName: "Meera",
			ManagerIDs: []string{"MGR1", "MGR2"},
		},
	}}
	roster := &fakeRoster{
		managers: map[string]*model.Manager{
			"MGR1": {ID: "MGR1", Name: "Priya", PasswordHash: managerHash},
			"MGR3": {ID: "MGR3", Name: "Unassigned", PasswordHash: managerHash},
		},
		workers: map[string]*model.Worker{
			"w1": {ID: "w1", Name: "Ravi"},
		},
	}

	return NewService(projects, roster,
		config.JWTConfig{Secret: "test-secret"},
		config.AuthConfig{HeadID: "admin", HeadPasswordHash: headHash},
		zap.NewNop(),
	)
}

func TestLoginHead(t *testing.T) {
	s := newTestService(t)

	token, p, err := s.Login(context.Background(), rbac.RoleHead, "admin", "12345")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, []string{"*"}, p.Scope)
	assert.True(t, p.CanAccessProject("PRJ12345"))

	_, _, err = s.Login(context.Background(), rbac.RoleHead, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(context.Background(), rbac.RoleHead, "someone", "12345")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginManagerScopeFollowsProjectAssignment(t *testing.T) {
	s := newTestService(t)

	// scope comes from projects.manager_ids, the column assignment writes;
	// a manager row carries no project list of its own
	_, p, err := s.Login(context.Background(), rbac.RoleManager, "MGR1", "manager-pass")
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleManager, p.Role)
	assert.ElementsMatch(t, []string{"PRJ12345", "PRJ67890"}, p.Scope)
	assert.True(t, p.CanAccessProject("PRJ12345"))
	assert.True(t, p.CanAccessProject("PRJ67890"))
	assert.False(t, p.CanAccessProject("PRJ99999"))
}

func TestLoginManagerWithoutProjects(t *testing.T) {
	s := newTestService(t)

	_, p, err := s.Login(context.Background(), rbac.RoleManager, "MGR3", "manager-pass")
	require.NoError(t, err)
	assert.Empty(t, p.Scope)
	assert.False(t, p.CanAccessProject("PRJ12345"))
}

func TestLoginManagerBadCredentials(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.Login(context.Background(), rbac.RoleManager, "MGR1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = s.Login(context.Background(), rbac.RoleManager, "MGR404", "manager-pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginClient(t *testing.T) {
	s := newTestService(t)

	_, p, err := s.Login(context.Background(), rbac.RoleClient, "PRJ12345", "")
	require.NoError(t, err)
	assert.Equal(t, "Anand", p.Name)
	assert.Equal(t, []string{"PRJ12345"}, p.Scope)
	assert.False(t, p.CanAccessProject("PRJ67890"))

	_, _, err = s.Login(context.Background(), rbac.RoleClient, "PRJ00000", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginWorker(t *testing.T) {
	s := newTestService(t)

	_, p, err := s.Login(context.Background(), rbac.RoleWorker, "w1", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"PRJ12345"}, p.Scope)

	_, _, err = s.Login(context.Background(), rbac.RoleWorker, "w404", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownRole(t *testing.T) {
	s := newTestService(t)

	_, _, err := s.Login(context.Background(), "INTERN", "x", "y")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
