package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ayush/research-workspace/backend/internal/apperr"
)

const fence = "```"

// FieldKind tells Normalize what default to use when a field is missing.
type FieldKind int

const (
	TextField FieldKind = iota
	ListField
	ObjectField
)

func (k FieldKind) zero() interface{} {
	switch k {
	case ListField:
		return []interface{}{}
	case ObjectField:
		return map[string]interface{}{}
	default:
		return ""
	}
}

// Shape lists the top-level fields a model response is expected to carry.
type Shape map[string]FieldKind

var (
	ResearchShape = Shape{
		"overview":          TextField,
		"deep_explanations": ListField,
		"sources":           ListField,
		"key_findings":      ListField,
	}
	DocumentShape = Shape{
		"summary":        TextField,
		"key_points":     ListField,
		"topics":         ListField,
		"extracted_data": ObjectField,
	}
	ReportShape = Shape{
		"executive_summary": TextField,
		"introduction":      TextField,
		"key_findings":      ListField,
		"detailed_analysis": ListField,
		"conclusions":       TextField,
		"recommendations":   ListField,
	}
)

// StripFences removes a leading ``` or ```lang marker and cuts everything
// from the last closing ``` onwards.
func StripFences(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, fence) {
		text = text[len(fence):]
		i := 0
		for i < len(text) && isLangChar(text[i]) {
			i++
		}
		text = text[i:]
	}
	if idx := strings.LastIndex(text, fence); idx >= 0 {
		text = text[:idx]
	}
	return strings.TrimSpace(text)
}

func isLangChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-' || c == '_' || c == '+'
}

// Normalize parses raw model output as a JSON object and fills defaults for
// missing or null fields of shape. Anything other than fence wrapping that
// keeps the text from parsing is a MalformedAIResponse.
func Normalize(raw string, shape Shape) (map[string]interface{}, error) {
	cleaned := StripFences(raw)

	var parsed map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return nil, apperr.MalformedAI(fmt.Errorf("decode model response: %w", err))
	}
	if parsed == nil {
		return nil, apperr.MalformedAI(errors.New("model response is not a JSON object"))
	}

	for field, kind := range shape {
		if v, ok := parsed[field]; !ok || v == nil {
			parsed[field] = kind.zero()
		}
	}
	return parsed, nil
}

// Decode normalizes raw and decodes the result into out. A field whose JSON
// type contradicts out is a MalformedAIResponse.
func Decode(raw string, shape Shape, out interface{}) error {
	record, err := Normalize(raw, shape)
	if err != nil {
		return err
	}
	b, err := json.Marshal(record)
	if err != nil {
		return apperr.MalformedAI(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return apperr.MalformedAI(fmt.Errorf("model response has unexpected field types: %w", err))
	}
	return nil
}
