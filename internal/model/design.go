package model

import "time"

// Design document kinds.
const (
	DesignType2DPlan   = "2D Plan"
	DesignType3DRender = "3D Render"
)

// DesignDocument is a design asset optionally requiring client approval.
// Approval (and rejection) can only happen while Required is true.
type DesignDocument struct {
	ID             string         `json:"id"`
	ProjectID      string         `json:"projectId"`
	Title          string         `json:"title"`
	Type           string         `json:"type"`
	URL            string         `json:"url"`
	PostedBy       string         `json:"postedBy"`
	Timestamp      time.Time      `json:"timestamp"`
	ApprovalStatus ApprovalStatus `json:"approvalStatus"`
}

type ApprovalStatus struct {
	Required   bool       `json:"required"`
	Approved   bool       `json:"approved"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
	Rejected   bool       `json:"rejected,omitempty"`
	Feedback   string     `json:"feedback,omitempty"`
}
