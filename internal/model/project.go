package model

import "time"

// Phase and task statuses. Transitions are unordered; any editor may set
// any status at any time.
const (
	StatusPending    = "PENDING"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
)

// Project is the root aggregate. ID is immutable after creation and
// always matches PRJ followed by five digits. CurrentSpend moves only
// through settlement recording.
type Project struct {
	ID                   string    `json:"id"`
	ProjectName          string    `json:"projectName"`
	ClientName           string    `json:"clientName"`
	ClientPhone          string    `json:"clientPhone,omitempty"`
	ClientEmail          string    `json:"clientEmail,omitempty"`
	ClientAddress        string    `json:"clientAddress,omitempty"`
	ClientNotes          string    `json:"clientNotes,omitempty"`
	Location             string    `json:"location"`
	EstimatedCost        float64   `json:"estimatedCost"`
	Budget               float64   `json:"budget"`
	CurrentSpend         float64   `json:"currentSpend"`
	ManagerIDs           []string  `json:"managerIds"`
	WorkerIDs            []string  `json:"workerIds"`
	IsComplete           bool      `json:"isComplete"`
	CompletionPercentage int       `json:"completionPercentage"`
	CreatedAt            time.Time `json:"createdAt"`
}

// TimelinePhase is an ordered milestone within a project's timeline.
type TimelinePhase struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	StartDate   string         `json:"startDate,omitempty"` // ISO date
	TargetDate  string         `json:"targetDate"`          // ISO date
	Status      string         `json:"status"`              // PENDING / IN_PROGRESS / COMPLETED
	Position    int            `json:"position"`
	Tasks       []TimelineTask `json:"tasks"`
}

type TimelineTask struct {
	ID                string   `json:"id"`
	PhaseID           string   `json:"phaseId"`
	Title             string   `json:"title"`
	Description       string   `json:"description,omitempty"`
	StartDate         string   `json:"startDate,omitempty"`
	TargetDate        string   `json:"targetDate,omitempty"`
	Status            string   `json:"status"`
	Position          int      `json:"position"`
	AssignedWorkerIDs []string `json:"assignedWorkerIds"`
}

// Room is a named space within a project, used to tag updates and worker
// assignments.
type Room struct {
	ID                string   `json:"id"`
	ProjectID         string   `json:"projectId"`
	Name              string   `json:"name"`
	Type              string   `json:"type"` // e.g. Living Room, Kitchen
	AssignedWorkerIDs []string `json:"assignedWorkerIds"`
}
