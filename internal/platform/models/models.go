package models

type Organization struct {
	ID            string `json:"id"`
	Slug          string `json:"slug"`
	Name          string `json:"name"`
	WebhookSecret string `json:"webhook_secret"`
	CreatedAt     int64  `json:"created_at"`
	UpdatedAt     int64  `json:"updated_at"`
	DeletedAt     *int64 `json:"deleted_at,omitempty"`
}

type User struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Email          string `json:"email"`
	PasswordHash   string `json:"-"`
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
	DeletedAt      *int64 `json:"deleted_at,omitempty"`
}

type Project struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Title          string `json:"title"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

type Task struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`
	Data      string `json:"data"` // raw task payload, JSON in DB
	CreatedAt int64  `json:"created_at"`
}

type Annotation struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	CreatedBy string `json:"created_by"`
	Result    string `json:"result"` // raw annotation result, JSON in DB
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}
