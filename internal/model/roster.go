package model

// Worker engagement kinds.
const (
	WorkerTypeDaily    = "Daily"
	WorkerTypeContract = "Contract"
)

// Worker is a global roster entity, referenced by ID from projects, rooms,
// tasks and updates. Never copied into them.
type Worker struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Role             string   `json:"role"` // trade, e.g. Carpenter, Painter
	Phone            string   `json:"phone"`
	Type             string   `json:"type"`
	Notes            string   `json:"notes,omitempty"`
	AssignedProjects []string `json:"assignedProjects,omitempty"`
}

// Manager is a global roster entity used for login. PasswordHash is
// bcrypt. Project assignment lives on projects.manager_ids; tokens are
// scoped from there at login.
type Manager struct {
	ID           string `json:"id"` // conventionally MGR-prefixed
	Name         string `json:"name"`
	PasswordHash string `json:"-"`
}
