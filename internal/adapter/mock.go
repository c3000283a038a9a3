package adapter

import (
	"fmt"
	"strings"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/workflow"
)

// Mock is a deterministic in-process agent. Given the same dispatch
// context it always produces the same result, which keeps full-run
// projections reproducible byte for byte.
type Mock struct {
	agentID string
}

// NewMock creates a mock adapter. An empty agentID selects "agent-mock".
func NewMock(agentID string) *Mock {
	if agentID == "" {
		agentID = "agent-mock"
	}
	return &Mock{agentID: agentID}
}

func (m *Mock) AgentID() string { return m.agentID }

func (m *Mock) Health() map[string]string {
	return map[string]string{"status": "ok"}
}

// Execute advances the dispatched task one lifecycle step: claim a
// todo, complete an in_progress task (with synthetic verification
// checks and the expected output file), approve a review. Anything
// else is reported as an issue.
func (m *Mock) Execute(ctx *workflow.DispatchContext) (map[string]any, error) {
	task := ctx.Task

	switch task.Status {
	case model.StatusTodo:
		return map[string]any{
			"activity_event": map[string]any{
				"action":  "claim",
				"task_id": task.TaskID,
				"notes":   "mock claim",
			},
		}, nil

	case model.StatusInProgress:
		checks := []any{fmt.Sprintf("mock-check:%s", task.TaskID)}
		if task.IsHotfix {
			checks = append(checks, fmt.Sprintf("mock-hotfix-check:%s", task.TaskID))
		}

		event := map[string]any{
			"action":       "complete",
			"task_id":      task.TaskID,
			"notes":        "mock complete",
			"verification": map[string]any{"checks": checks},
		}
		if task.IsHotfix {
			if task.IssueID != nil {
				event["issue_id"] = *task.IssueID
			}
			var fixes []string
			if task.Fixes != nil {
				fixes = *task.Fixes
			}
			event["fixes"] = toAnyList(fixes)
		}

		result := map[string]any{"activity_event": event}
		if path := chooseOutputFile(task); path != "" {
			result["file_updates"] = []any{
				map[string]any{"path": path, "content": buildFileContent(task)},
			}
		}
		return result, nil

	case model.StatusReview:
		return map[string]any{
			"activity_event": map[string]any{
				"action":   "review",
				"task_id":  task.TaskID,
				"decision": model.DecisionApprove,
				"tasks":    []any{task.TaskID},
				"notes":    "mock review approve",
			},
		}, nil
	}

	return map[string]any{
		"activity_event": map[string]any{
			"action":   "issue.report",
			"task_id":  task.TaskID,
			"issue_id": fmt.Sprintf("ISS-MOCK-%s", task.TaskID),
			"severity": "low",
			"title":    "Task not actionable",
			"evidence": map[string]any{
				"symptom": fmt.Sprintf("task status is %s", task.Status),
				"repro_steps": []any{
					fmt.Sprintf("load task %s", task.TaskID),
					fmt.Sprintf("check status %s", task.Status),
				},
			},
		},
	}, nil
}

func chooseOutputFile(task model.Task) string {
	if files := task.OutputFiles(); len(files) > 0 {
		return files[0]
	}
	switch task.TaskKind {
	case model.KindSpec:
		return fmt.Sprintf("docs/spec/%s.md", task.TaskID)
	case model.KindImpl:
		return fmt.Sprintf("src/%s.txt", strings.ToLower(task.TaskID))
	}
	return fmt.Sprintf("docs/qa/%s.md", task.TaskID)
}

func buildFileContent(task model.Task) string {
	return fmt.Sprintf(
		"# %s\n\n- kind: %s\n- generated_by: mock_adapter\n- note: deterministic fixture output\n",
		task.TaskID, task.TaskKind,
	)
}

func toAnyList(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
