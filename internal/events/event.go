// Package events carries collection-change notifications from committed
// writes out to connected dashboard clients. Writers append events to the
// transactional outbox; the dispatcher publishes them to MQ; the hub fans
// them out over SSE. Clients re-fetch the whole collection on every
// notification; there is no delta contract.
package events

import (
	"encoding/json"
	"fmt"
)

// Collections a client can observe.
const (
	CollectionProjects    = "projects"
	CollectionTimeline    = "timeline"
	CollectionRooms       = "rooms"
	CollectionUpdates     = "updates"
	CollectionDesigns     = "designs"
	CollectionSettlements = "settlements"
	CollectionManagers    = "managers"
	CollectionWorkers     = "workers"
)

// Change is the payload published for every committed write. ProjectID is
// empty for global roster changes.
type Change struct {
	Collection string `json:"collection"`
	ProjectID  string `json:"projectId,omitempty"`
	EntityID   string `json:"entityId,omitempty"`
	Action     string `json:"action"` // created / updated / deleted
}

// RoutingKey returns the MQ topic key for the change, e.g.
// "project.PRJ12345.updates" or "global.workers".
func (c Change) RoutingKey() string {
	if c.ProjectID == "" {
		return fmt.Sprintf("global.%s", c.Collection)
	}
	return fmt.Sprintf("project.%s.%s", c.ProjectID, c.Collection)
}

// Marshal serializes the change for the outbox payload column.
func (c Change) Marshal() json.RawMessage {
	b, _ := json.Marshal(c)
	return b
}
