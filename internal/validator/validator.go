package validator

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/roach88/esaa/internal/contract"
	"github.com/roach88/esaa/internal/model"
)

// FileUpdate is one requested file write from an agent result.
type FileUpdate struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Validate admits or rejects a full agent result against the result
// schema, the agent contract, and the dispatched task. On success it
// returns the activity event payload (as submitted, untouched) and the
// requested file updates; any failure is a domain error and the result
// must not produce events or writes.
func Validate(output map[string]any, schema *jsonschema.Schema, c *contract.Contract, task *model.Task) (map[string]any, []FileUpdate, error) {
	if err := schema.Validate(any(output)); err != nil {
		return nil, nil, model.Newf(model.CodeSchemaInvalid, "agent result schema: %v", err)
	}

	var unknown []string
	for key := range output {
		if key != "activity_event" && key != "file_updates" {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, nil, model.Newf(model.CodeSchemaInvalid, "unknown root keys: %s", strings.Join(unknown, ", "))
	}

	event := model.MapField(output, "activity_event")
	action := model.StringField(event, "action")
	if !c.AllowsAction(action) {
		return nil, nil, model.Newf(model.CodeUnknownAction, "unknown action: %s", action)
	}
	if model.StringField(event, "task_id") != task.TaskID {
		return nil, nil, model.New(model.CodeSchemaInvalid, "activity_event.task_id does not match dispatched task")
	}

	var forbidden []string
	for field := range event {
		if c.IsForbiddenField(field) {
			forbidden = append(forbidden, field)
		}
	}
	if len(forbidden) > 0 {
		sort.Strings(forbidden)
		return nil, nil, model.Newf(model.CodeSchemaInvalid, "forbidden activity_event fields: %s", strings.Join(forbidden, ", "))
	}

	if err := checkWorkflowGates(event, action, task); err != nil {
		return nil, nil, err
	}

	updates, err := decodeFileUpdates(output)
	if err != nil {
		return nil, nil, err
	}
	if err := checkBoundaries(updates, c, task); err != nil {
		return nil, nil, err
	}
	return event, updates, nil
}

// checkWorkflowGates enforces the evidence gates layered on top of the
// raw state machine: impl completions carry verification checks, hotfix
// completions carry more, and reviews carry a recognizable decision.
func checkWorkflowGates(event map[string]any, action string, task *model.Task) error {
	if action == "complete" {
		if task.TaskKind == model.KindImpl {
			minChecks := 1
			if task.IsHotfix {
				minChecks = 2
			}
			if countChecks(event) < minChecks {
				return model.Newf(model.CodeWorkflowGate, "complete requires at least %d verification checks", minChecks)
			}
		}
		if task.IsHotfix {
			fixes, _ := event["fixes"].([]any)
			if model.StringField(event, "issue_id") == "" || len(fixes) == 0 {
				return model.New(model.CodeWorkflowGate, "hotfix complete requires issue_id and fixes")
			}
		}
	}

	if action == "review" {
		decision := model.StringField(event, "decision")
		if decision != model.DecisionApprove && decision != model.DecisionRequestChanges {
			return model.Newf(model.CodeSchemaInvalid, "invalid review decision: %q", decision)
		}
	}
	return nil
}

func countChecks(event map[string]any) int {
	verification := model.MapField(event, "verification")
	checks, _ := verification["checks"].([]any)
	return len(checks)
}

func decodeFileUpdates(output map[string]any) ([]FileUpdate, error) {
	if _, ok := output["file_updates"]; !ok {
		return nil, nil
	}
	decoded, err := model.DecodePayload[struct {
		FileUpdates []FileUpdate `json:"file_updates"`
	}](output)
	if err != nil {
		return nil, err
	}
	return decoded.FileUpdates, nil
}

// checkBoundaries enforces write boundaries on every requested file
// update: the path must be safe and relative, match the task kind's
// allowlist, and miss the denylist. Hotfixes with patch scope enabled
// must additionally stay under one of the task's scope_patch prefixes.
func checkBoundaries(updates []FileUpdate, c *contract.Contract, task *model.Task) error {
	if len(updates) == 0 {
		return nil
	}
	bounds, err := c.KindBoundaries(task.TaskKind)
	if err != nil {
		return err
	}

	patchScoped := c.Boundaries.PatchScope.Enabled && task.IsHotfix

	for _, update := range updates {
		path, err := SafeRelPath(update.Path)
		if err != nil {
			return err
		}
		if !matchesAny(path, bounds.Write) {
			return model.Newf(model.CodeBoundaryViolation, "path not allowed for %s: %s", task.TaskKind, path)
		}
		if len(bounds.ForbiddenWrite) > 0 && matchesAny(path, bounds.ForbiddenWrite) {
			return model.Newf(model.CodeBoundaryViolation, "path explicitly forbidden: %s", path)
		}
		if patchScoped {
			if task.ScopePatch == nil || len(*task.ScopePatch) == 0 {
				return model.New(model.CodeBoundaryViolation, "hotfix task missing scope_patch")
			}
			if !underAnyPrefix(path, *task.ScopePatch) {
				return model.Newf(model.CodeBoundaryViolation, "path outside scope_patch: %s", path)
			}
		}
	}
	return nil
}

func matchesAny(path string, patterns []string) bool {
	for _, pattern := range patterns {
		pattern = strings.ReplaceAll(pattern, "\\", "/")
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

func underAnyPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, NormalizeRelPath(prefix)) {
			return true
		}
	}
	return false
}

// NormalizeRelPath converts backslashes to forward slashes and strips
// any leading "./" prefixes. It never rejects; see SafeRelPath.
func NormalizeRelPath(path string) string {
	norm := strings.ReplaceAll(path, "\\", "/")
	for strings.HasPrefix(norm, "./") {
		norm = norm[2:]
	}
	return norm
}

// SafeRelPath normalizes a submitted path and rejects anything that
// could escape the project root: empty paths, absolute paths, and any
// ".." segment.
func SafeRelPath(path string) (string, error) {
	norm := NormalizeRelPath(path)
	if norm == "" || strings.HasPrefix(norm, "/") {
		return "", model.Newf(model.CodeBoundaryViolation, "invalid path: %s", path)
	}
	for _, part := range strings.Split(norm, "/") {
		if part == ".." {
			return "", model.Newf(model.CodeBoundaryViolation, "path traversal forbidden: %s", path)
		}
	}
	return norm, nil
}
