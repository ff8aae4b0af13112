package ai

import (
	"fmt"
	"strings"

	"github.com/ayush/research-workspace/backend/internal/models"
)

const (
	// MaxDocumentChars caps how much extracted PDF text goes into a prompt.
	MaxDocumentChars = 30000
	TruncationMarker = "... [truncated]"
)

const jsonOnly = "IMPORTANT: Return ONLY a single JSON object matching the structure above. " +
	"Do not add markdown formatting, commentary or any text before or after the JSON."

// BuildResearchPrompt asks for a structured research overview of topic.
func BuildResearchPrompt(topic string) string {
	return fmt.Sprintf(`You are a research assistant. Given the topic %q, provide comprehensive research results.

Return your response as a valid JSON object with this exact structure:
{
  "overview": "A comprehensive 2-3 paragraph overview of the topic",
  "deep_explanations": [
    {
      "title": "Section title",
      "content": "Detailed explanation of this aspect"
    }
  ],
  "sources": [
    {
      "title": "Source title",
      "url": "https://example.com",
      "description": "Brief description"
    }
  ],
  "key_findings": [
    "Key finding 1",
    "Key finding 2"
  ]
}

Make the response detailed, informative, and well-structured. Include at least 3 deep_explanations sections and at least 5 credible sources.

%s`, topic, jsonOnly)
}

// TruncateDocumentText keeps the first MaxDocumentChars characters of text
// and appends TruncationMarker when anything was cut.
func TruncateDocumentText(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxDocumentChars {
		return text
	}
	return string(runes[:MaxDocumentChars]) + TruncationMarker
}

// BuildDocumentPrompt asks for a summary of extracted document text.
func BuildDocumentPrompt(text string) string {
	return fmt.Sprintf(`Analyze and summarize the following document. Return your response as valid JSON with this structure:
{
  "summary": "A concise 2-3 paragraph summary of the document",
  "key_points": ["Key point 1", "Key point 2", "Key point 3"],
  "topics": ["Topic 1", "Topic 2"],
  "extracted_data": {
    "type": "Type of document (e.g., research paper, report, article)",
    "main_subject": "Main subject area",
    "key_entities": ["Entity 1", "Entity 2"]
  }
}

%s

Document content:
%s`, jsonOnly, TruncateDocumentText(text))
}

// BuildReportPrompt asks for a report synthesizing the given sessions and
// documents under title.
func BuildReportPrompt(title string, sessions []models.ResearchSession, docs []models.Document) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert report writer. Generate a comprehensive, professional report based on the following content.\n\n")
	fmt.Fprintf(&b, "REPORT TITLE: %q\n\n", title)

	b.WriteString("RESEARCH SESSIONS:\n")
	if len(sessions) == 0 {
		b.WriteString("None\n")
	}
	for i, s := range sessions {
		fmt.Fprintf(&b, "\nResearch %d: %s\nOverview: %s\nKey Findings: %s\n",
			i+1, s.Topic, s.Overview, joinOrNA(s.KeyFindings))
	}

	b.WriteString("\nDOCUMENTS:\n")
	if len(docs) == 0 {
		b.WriteString("None\n")
	}
	for i, d := range docs {
		fmt.Fprintf(&b, "\nDocument %d: %s\nSummary: %s\nKey Points: %s\n",
			i+1, d.Filename, d.Summary, joinOrNA(d.KeyPoints))
	}

	b.WriteString(`
Generate a cohesive, well-structured report in JSON format with the following structure:
{
  "executive_summary": "A brief 2-3 sentence overview of the entire report",
  "introduction": "An introduction that sets the context (2-3 paragraphs)",
  "key_findings": [
    "Finding 1",
    "Finding 2",
    "Finding 3"
  ],
  "detailed_analysis": [
    {
      "section_title": "Title of analysis section",
      "content": "Detailed analysis content for the section"
    }
  ],
  "conclusions": "Overall conclusions drawn from the research and documents (2-3 paragraphs)",
  "recommendations": [
    "Recommendation 1",
    "Recommendation 2"
  ]
}

Make the report professional, insightful, and well-organized. Synthesize information from all sources into a cohesive narrative.
`)
	b.WriteString(jsonOnly)
	return b.String()
}

func joinOrNA(items []string) string {
	if len(items) == 0 {
		return "N/A"
	}
	return strings.Join(items, ", ")
}
