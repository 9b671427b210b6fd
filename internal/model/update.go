package model

import "time"

// Update kinds.
const (
	UpdateTypeMessage = "message"
	UpdateTypePhoto   = "photo"
	UpdateTypeVideo   = "video"
)

// ProjectUpdate is an append-only feed entry. The entry itself is never
// edited after posting; only comments are appended afterwards.
type ProjectUpdate struct {
	ID                  string    `json:"id"`
	ProjectID           string    `json:"projectId"`
	Timestamp           time.Time `json:"timestamp"`
	PostedBy            string    `json:"postedBy"` // display name, not an identity
	Role                string    `json:"role"`
	Type                string    `json:"type"`
	Category            string    `json:"category"` // defaults to General
	Content             string    `json:"content"`  // text, or file URL for photo/video
	IsClientViewable    bool      `json:"isClientViewable"`
	ProgressPercentage  *int      `json:"progressPercentage,omitempty"`
	Comments            []Comment `json:"comments"`
	AssociatedWorkerIDs []string  `json:"associatedWorkerIds,omitempty"`
	RoomID              string    `json:"roomId,omitempty"`
}

type Comment struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}
