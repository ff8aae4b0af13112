package models

import "time"

// SummaryFields is the model-generated part of a document.
type SummaryFields struct {
	Summary       string                 `json:"summary"        bson:"summary"`
	KeyPoints     []string               `json:"key_points"     bson:"key_points"`
	Topics        []string               `json:"topics"         bson:"topics"`
	ExtractedData map[string]interface{} `json:"extracted_data" bson:"extracted_data"`
}

// Document is an uploaded PDF plus its AI summary. Write-once.
type Document struct {
	ID        string `json:"id"         bson:"_id"`
	ProjectID string `json:"project_id" bson:"project_id"`
	UserID    string `json:"user_id"    bson:"user_id"`
	Filename  string `json:"filename"   bson:"filename"`
	FileSize  int64  `json:"file_size"  bson:"file_size"`
	FileType  string `json:"file_type"  bson:"file_type"`
	// FileKey locates the original upload in object storage. Private.
	FileKey       string `json:"-"           bson:"file_key"`
	SummaryFields `bson:",inline"`
	TextLength    int       `json:"text_length" bson:"text_length"`
	CreatedAt     time.Time `json:"created_at"  bson:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"  bson:"updated_at"`
}
