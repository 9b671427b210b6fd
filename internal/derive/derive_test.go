package derive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"velanspaces/internal/model"
)

func TestListHealth(t *testing.T) {
	assert.Equal(t, HealthGreen, ListHealth(1000, 0))
	assert.Equal(t, HealthGreen, ListHealth(1000, 1000))
	assert.Equal(t, HealthRed, ListHealth(1000, 1000.01))
	// zero-budget projects stay green until the first rupee is spent
	assert.Equal(t, HealthGreen, ListHealth(0, 0))
	assert.Equal(t, HealthRed, ListHealth(0, 1))
}

func TestBudgetHealth(t *testing.T) {
	assert.Equal(t, HealthGreen, BudgetHealth(1000, 0))
	assert.Equal(t, HealthGreen, BudgetHealth(1000, 850))
	assert.Equal(t, HealthYellow, BudgetHealth(1000, 850.01))
	assert.Equal(t, HealthYellow, BudgetHealth(1000, 1000))
	assert.Equal(t, HealthRed, BudgetHealth(1000, 1000.01))
}

func TestSpendRemaining(t *testing.T) {
	assert.Equal(t, 250.0, SpendRemaining(1000, 750))
	assert.Equal(t, -50.0, SpendRemaining(1000, 1050))
}

func TestTaskProgress(t *testing.T) {
	assert.Equal(t, 0, TaskProgress(0, 0))
	assert.Equal(t, 0, TaskProgress(5, 0))
	assert.Equal(t, 50, TaskProgress(1, 2))
	assert.Equal(t, 33, TaskProgress(1, 3))
	assert.Equal(t, 67, TaskProgress(2, 3))
	assert.Equal(t, 100, TaskProgress(3, 3))
}

func TestPhaseTaskProgress(t *testing.T) {
	phase := model.TimelinePhase{
		Tasks: []model.TimelineTask{
			{Status: model.StatusCompleted},
			{Status: model.StatusInProgress},
			{Status: model.StatusPending},
			{Status: model.StatusCompleted},
		},
	}
	assert.Equal(t, 50, PhaseTaskProgress(phase))
	assert.Equal(t, 0, PhaseTaskProgress(model.TimelinePhase{}))
}

func TestTimelineProgress(t *testing.T) {
	phases := []model.TimelinePhase{
		{Status: model.StatusCompleted},
		{Status: model.StatusCompleted},
		{Status: model.StatusInProgress},
	}
	assert.Equal(t, 67, TimelineProgress(phases))
	assert.Equal(t, 0, TimelineProgress(nil))
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)

	assert.Equal(t, "Due today", DaysRemaining("2025-06-15", now))
	assert.Equal(t, "5 days left", DaysRemaining("2025-06-20", now))
	assert.Equal(t, "1 days left", DaysRemaining("2025-06-16", now))
	assert.Equal(t, "3 days overdue", DaysRemaining("2025-06-12", now))
	assert.Equal(t, "Not set", DaysRemaining("", now))
	assert.Equal(t, "Not set", DaysRemaining("15/06/2025", now))
	assert.Equal(t, "Not set", DaysRemaining("garbage", now))
}

func TestResolveWorkerNames(t *testing.T) {
	roster := []model.Worker{
		{ID: "w1", Name: "Ravi"},
		{ID: "w2", Name: "Suresh"},
	}

	assert.Equal(t, []string{"Ravi", "Suresh"}, ResolveWorkerNames([]string{"w1", "w2"}, roster))
	// dangling references are skipped, not errored
	assert.Equal(t, []string{"Suresh"}, ResolveWorkerNames([]string{"gone", "w2"}, roster))
	assert.Empty(t, ResolveWorkerNames(nil, roster))
}

func TestResolveRoomName(t *testing.T) {
	rooms := []model.Room{{ID: "r1", Name: "Kitchen"}}
	assert.Equal(t, "Kitchen", ResolveRoomName("r1", rooms))
	assert.Equal(t, "", ResolveRoomName("r2", rooms))
}
