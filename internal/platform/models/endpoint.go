package models

// Endpoint is a registered webhook target. A non-nil ProjectID makes it a
// project-scoped endpoint; ProjectID never changes after creation.
type Endpoint struct {
	ID                string            `json:"id"`
	OrganizationID    string            `json:"organization_id"`
	ProjectID         *string           `json:"project_id,omitempty"`
	URL               string            `json:"url"`
	SendPayload       bool              `json:"send_payload"`
	SendForAllActions bool              `json:"send_for_all_actions"`
	Headers           map[string]string `json:"headers"` // JSON object in DB
	IsActive          bool              `json:"is_active"`
	CreatedAt         int64             `json:"created_at"`
	UpdatedAt         int64             `json:"updated_at"`
}

// Subscription links one Endpoint to one action. The (endpoint_id, action_id)
// pair is unique; rows are written only by the reconciler.
type Subscription struct {
	EndpointID string `json:"endpoint_id"`
	ActionID   string `json:"action_id"`
	CreatedAt  int64  `json:"created_at"`
}
