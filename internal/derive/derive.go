// Package derive computes display state from already-fetched snapshots.
// Everything here is pure; no persistence access.
package derive

import (
	"fmt"
	"math"
	"time"

	"velanspaces/internal/model"
)

// Health classifications.
const (
	HealthGreen  = "green"
	HealthYellow = "yellow"
	HealthRed    = "red"
)

// ListHealth is the binary classification used on the project list:
// red once spend exceeds budget, green otherwise.
func ListHealth(budget, currentSpend float64) string {
	if currentSpend > budget {
		return HealthRed
	}
	return HealthGreen
}

// BudgetHealth is the three-way classification used on the budget detail
// view: red when over budget, yellow when less than 15% of budget remains.
// Deliberately different thresholds from ListHealth; both are documented
// behaviors.
func BudgetHealth(budget, currentSpend float64) string {
	remaining := budget - currentSpend
	switch {
	case remaining < 0:
		return HealthRed
	case remaining < budget*0.15:
		return HealthYellow
	default:
		return HealthGreen
	}
}

// SpendRemaining returns budget minus spend. Negative means overrun.
func SpendRemaining(budget, currentSpend float64) float64 {
	return budget - currentSpend
}

// TaskProgress returns the rounded completion percentage, 0 when total is 0.
func TaskProgress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// PhaseTaskProgress counts completed tasks within a phase.
func PhaseTaskProgress(phase model.TimelinePhase) int {
	completed := 0
	for _, t := range phase.Tasks {
		if t.Status == model.StatusCompleted {
			completed++
		}
	}
	return TaskProgress(completed, len(phase.Tasks))
}

// TimelineProgress is the overall project progress: the rounded share of
// completed phases, 0 when there are no phases.
func TimelineProgress(phases []model.TimelinePhase) int {
	completed := 0
	for _, p := range phases {
		if p.Status == model.StatusCompleted {
			completed++
		}
	}
	return TaskProgress(completed, len(phases))
}

// DaysRemaining labels a target date relative to today: "Due today",
// "N days overdue", "N days left", or "Not set" for empty/malformed input.
func DaysRemaining(targetDate string, now time.Time) string {
	if targetDate == "" {
		return "Not set"
	}
	target, err := time.Parse("2006-01-02", targetDate)
	if err != nil {
		return "Not set"
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	target = time.Date(target.Year(), target.Month(), target.Day(), 0, 0, 0, 0, time.UTC)

	days := int(target.Sub(today).Hours() / 24)
	switch {
	case days == 0:
		return "Due today"
	case days < 0:
		return fmt.Sprintf("%d days overdue", -days)
	default:
		return fmt.Sprintf("%d days left", days)
	}
}

// ResolveWorkerNames maps assignment IDs to display names against the
// loaded roster. Dangling IDs are skipped: roster and assignment lists can
// be transiently inconsistent under concurrent edits.
func ResolveWorkerNames(ids []string, roster []model.Worker) []string {
	byID := make(map[string]string, len(roster))
	for _, w := range roster {
		byID[w.ID] = w.Name
	}

	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

// ResolveRoomName returns the room's name, or "" when the ID doesn't
// resolve.
func ResolveRoomName(id string, rooms []model.Room) string {
	for _, r := range rooms {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}
