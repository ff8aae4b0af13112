package models

import "time"

// Explanation is one titled section of a research overview.
type Explanation struct {
	Title   string `json:"title"   bson:"title"`
	Content string `json:"content" bson:"content"`
}

// Source is a reference the model cited for a topic.
type Source struct {
	Title       string `json:"title"       bson:"title"`
	URL         string `json:"url"         bson:"url"`
	Description string `json:"description" bson:"description"`
}

// ResearchFields is the model-generated part of a research session.
type ResearchFields struct {
	Overview         string        `json:"overview"          bson:"overview"`
	DeepExplanations []Explanation `json:"deep_explanations" bson:"deep_explanations"`
	Sources          []Source      `json:"sources"           bson:"sources"`
	KeyFindings      []string      `json:"key_findings"      bson:"key_findings"`
}

// ResearchSession is one AI research run stored in MongoDB. Write-once.
type ResearchSession struct {
	ID             string `json:"id"         bson:"_id"`
	ProjectID      string `json:"project_id" bson:"project_id"`
	UserID         string `json:"user_id"    bson:"user_id"`
	Topic          string `json:"topic"      bson:"topic"`
	ResearchFields `bson:",inline"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// CreateResearchRequest is the JSON body for POST /api/research.
type CreateResearchRequest struct {
	Topic     string `json:"topic"     validate:"required"`
	ProjectID string `json:"projectId" validate:"required"`
}
