package model

import (
	"bytes"
	"encoding/json"
)

// Typed payload views. Events travel as loose maps; apply functions
// decode into these before touching projection state.

// TaskPayload backs task.create and hotfix.create.
type TaskPayload struct {
	TaskID               string   `json:"task_id"`
	TaskKind             string   `json:"task_kind"`
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	DependsOn            []string  `json:"depends_on"`
	Targets              []string  `json:"targets"`
	IsHotfix             bool      `json:"is_hotfix"`
	IssueID              *string   `json:"issue_id"`
	Fixes                *[]string `json:"fixes"`
	ScopePatch           *[]string `json:"scope_patch"`
	RequiredVerification *[]string `json:"required_verification"`
	BaselineID           *string   `json:"baseline_id"`
}

// RunStartPayload backs run.start.
type RunStartPayload struct {
	RunID               string `json:"run_id"`
	Status              string `json:"status"`
	MasterCorrelationID string `json:"master_correlation_id"`
}

// RunEndPayload backs run.end.
type RunEndPayload struct {
	Status string `json:"status"`
}

// ReviewPayload backs review.
type ReviewPayload struct {
	TaskID   string `json:"task_id"`
	Decision string `json:"decision"`
}

// DecodePayload converts a raw payload map into a typed payload view.
// Shape mismatches surface as SCHEMA_INVALID domain errors.
func DecodePayload[T any](m map[string]any) (T, error) {
	var out T
	raw, err := marshalNoEscape(m)
	if err != nil {
		return out, Newf(CodeSchemaInvalid, "payload encode: %v", err)
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return out, Newf(CodeSchemaInvalid, "payload decode: %v", err)
	}
	return out, nil
}

// StringField reads an optional string field from a raw payload.
func StringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// MapField reads an optional object field from a raw payload.
func MapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}
