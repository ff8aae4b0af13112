package models

import "time"

// AnalysisSection is one titled block of a report's detailed analysis.
type AnalysisSection struct {
	SectionTitle string `json:"section_title" bson:"section_title"`
	Content      string `json:"content"       bson:"content"`
}

// ReportFields is the model-generated part of a report.
type ReportFields struct {
	ExecutiveSummary string            `json:"executive_summary" bson:"executive_summary"`
	Introduction     string            `json:"introduction"      bson:"introduction"`
	KeyFindings      []string          `json:"key_findings"      bson:"key_findings"`
	DetailedAnalysis []AnalysisSection `json:"detailed_analysis" bson:"detailed_analysis"`
	Conclusions      string            `json:"conclusions"       bson:"conclusions"`
	Recommendations  []string          `json:"recommendations"   bson:"recommendations"`
}

// Report is an AI synthesis of selected sessions and documents. Write-once.
type Report struct {
	ID                 string   `json:"id"                   bson:"_id"`
	ProjectID          string   `json:"project_id"           bson:"project_id"`
	UserID             string   `json:"user_id"              bson:"user_id"`
	Title              string   `json:"title"                bson:"title"`
	ResearchSessionIDs []string `json:"research_session_ids" bson:"research_session_ids"`
	DocumentIDs        []string `json:"document_ids"         bson:"document_ids"`
	ReportFields       `bson:",inline"`
	CreatedAt          time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" bson:"updated_at"`
}

// GenerateReportRequest is the JSON body for POST /api/reports/generate.
type GenerateReportRequest struct {
	ProjectID          string   `json:"projectId"          validate:"required"`
	Title              string   `json:"title"              validate:"required"`
	ResearchSessionIDs []string `json:"researchSessionIds"`
	DocumentIDs        []string `json:"documentIds"`
}
