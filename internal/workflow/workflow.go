package workflow

import (
	"fmt"
	"sort"

	"github.com/roach88/esaa/internal/contract"
	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

// SelectNextTask picks the single task the orchestrator dispatches
// next. Unfinished work drains first: any task in review beats any task
// in in_progress, which beats fresh todos. Within a status, the lowest
// task_id wins. A todo is runnable only when every dependency that
// exists in the roadmap is done; references to unknown task ids do not
// block.
func SelectNextTask(tasks []model.Task) *model.Task {
	byID := make(map[string]*model.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].TaskID] = &tasks[i]
	}

	for _, status := range []string{model.StatusReview, model.StatusInProgress} {
		if task := firstByID(tasks, status); task != nil {
			return task
		}
	}

	todo := make([]*model.Task, 0)
	for i := range tasks {
		if tasks[i].Status == model.StatusTodo {
			todo = append(todo, &tasks[i])
		}
	}
	sort.Slice(todo, func(i, j int) bool { return todo[i].TaskID < todo[j].TaskID })
	for _, task := range todo {
		if depsDone(task, byID) {
			return task
		}
	}
	return nil
}

func firstByID(tasks []model.Task, status string) *model.Task {
	var best *model.Task
	for i := range tasks {
		if tasks[i].Status != status {
			continue
		}
		if best == nil || tasks[i].TaskID < best.TaskID {
			best = &tasks[i]
		}
	}
	return best
}

func depsDone(task *model.Task, byID map[string]*model.Task) bool {
	for _, dep := range task.DependsOn {
		if d, ok := byID[dep]; ok && d.Status != model.StatusDone {
			return false
		}
	}
	return true
}

// AllTasksDone reports run completion: at least one task, all done.
func AllTasksDone(tasks []model.Task) bool {
	if len(tasks) == 0 {
		return false
	}
	for _, task := range tasks {
		if task.Status != model.StatusDone {
			return false
		}
	}
	return true
}

// DispatchBoundaries is the read/write subset of the contract handed to
// an agent. Forbidden-write globs stay orchestrator-side.
type DispatchBoundaries struct {
	Read  []string `json:"read"`
	Write []string `json:"write"`
}

// ContextPack carries the run and project framing for a dispatch.
type ContextPack struct {
	Run     model.RunMeta `json:"run"`
	Project model.Project `json:"project"`
}

// Correlation ties an agent invocation back to the run.
type Correlation struct {
	MasterCorrelationID *string `json:"master_correlation_id"`
	TaskID              string  `json:"task_id"`
}

// DispatchContext is everything an agent receives for one task.
type DispatchContext struct {
	Task        model.Task         `json:"task"`
	Boundaries  DispatchBoundaries `json:"boundaries"`
	ContextPack ContextPack        `json:"context_pack"`
	Correlation Correlation        `json:"correlation"`
}

// BuildDispatchContext assembles the dispatch context for a task from
// the current projection and the agent contract.
func BuildDispatchContext(roadmap *model.Roadmap, task *model.Task, c *contract.Contract) (*DispatchContext, error) {
	bounds, err := c.KindBoundaries(task.TaskKind)
	if err != nil {
		return nil, err
	}
	return &DispatchContext{
		Task: *task,
		Boundaries: DispatchBoundaries{
			Read:  nonNil(bounds.Read),
			Write: nonNil(bounds.Write),
		},
		ContextPack: ContextPack{
			Run:     roadmap.Meta.Run,
			Project: roadmap.Project,
		},
		Correlation: Correlation{
			MasterCorrelationID: roadmap.Meta.MasterCorrelationID,
			TaskID:              task.TaskID,
		},
	}, nil
}

// BuildHotfixEvent derives a hotfix.create event from an issue.report
// payload. Returns nil when the issue carries no issue_id or no fixes
// list, or when a hotfix for the issue was already created earlier in
// the log (the synthesis is idempotent per issue).
func BuildHotfixEvent(currentEvents []model.Event, issuePayload map[string]any, ts string) *model.Event {
	issueID := model.StringField(issuePayload, "issue_id")
	fixes, hasFixes := issuePayload["fixes"].([]any)
	if issueID == "" || !hasFixes || len(fixes) == 0 {
		return nil
	}

	hotfixTaskID := model.HotfixTaskID(issueID)
	for _, event := range currentEvents {
		if event.Action == model.ActionHotfixCreate && model.StringField(event.Payload, "task_id") == hotfixTaskID {
			return nil
		}
	}

	scopePatch := anyList(issuePayload, "scope_patch", []any{"src/hotfix/"})
	requiredVerification := anyList(issuePayload, "required_verification", []any{"unit", "regression"})
	baselineID := "B-000"
	if affected := model.MapField(issuePayload, "affected"); affected != nil {
		if b, ok := affected["baseline_id"].(string); ok {
			baselineID = b
		}
	}

	event := model.NewEvent(store.NextSeq(currentEvents), ts, "orchestrator", model.ActionHotfixCreate, map[string]any{
		"task_id":               hotfixTaskID,
		"task_kind":             model.KindImpl,
		"title":                 fmt.Sprintf("Hotfix for %s", issueID),
		"description":           fmt.Sprintf("Apply a minimal hotfix to resolve issue %s without regressing immutable done tasks.", issueID),
		"depends_on":            []any{},
		"targets":               []any{issueID},
		"outputs":               map[string]any{"files": []any{fmt.Sprintf("src/hotfix/%s.txt", hotfixTaskID)}},
		"is_hotfix":             true,
		"issue_id":              issueID,
		"fixes":                 fixes,
		"scope_patch":           scopePatch,
		"required_verification": requiredVerification,
		"baseline_id":           baselineID,
	})
	return &event
}

func anyList(m map[string]any, key string, fallback []any) []any {
	if v, ok := m[key].([]any); ok {
		return v
	}
	return fallback
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
