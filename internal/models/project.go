package models

import "time"

// Project groups research sessions, documents and reports for one owner.
type Project struct {
	ID          string    `json:"id"          bson:"_id"`
	UserID      string    `json:"user_id"     bson:"user_id"`
	Title       string    `json:"title"       bson:"title"`
	Description string    `json:"description" bson:"description"`
	CreatedAt   time.Time `json:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"  bson:"updated_at"`
}

// ProjectUpdate carries the optional fields of PUT /api/projects/{id}.
// Nil means "leave unchanged".
type ProjectUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

// CreateProjectRequest is the JSON body for POST /api/projects.
type CreateProjectRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
}
