package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/workflow"
)

func dispatch(task model.Task) *workflow.DispatchContext {
	return &workflow.DispatchContext{Task: task}
}

func activityEvent(t *testing.T, output map[string]any) map[string]any {
	t.Helper()
	event, ok := output["activity_event"].(map[string]any)
	require.True(t, ok, "output missing activity_event: %v", output)
	return event
}

func TestMock_DefaultsAgentID(t *testing.T) {
	assert.Equal(t, "agent-mock", NewMock("").AgentID())
	assert.Equal(t, "agent-impl", NewMock("agent-impl").AgentID())
	assert.Equal(t, map[string]string{"status": "ok"}, NewMock("").Health())
}

func TestMock_ClaimsTodoTask(t *testing.T) {
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID: "T-1000", TaskKind: model.KindSpec, Status: model.StatusTodo,
	}))
	require.NoError(t, err)

	event := activityEvent(t, output)
	assert.Equal(t, "claim", event["action"])
	assert.Equal(t, "T-1000", event["task_id"])
}

func TestMock_CompletesInProgressTask(t *testing.T) {
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID: "T-1010", TaskKind: model.KindImpl, Status: model.StatusInProgress,
	}))
	require.NoError(t, err)

	event := activityEvent(t, output)
	assert.Equal(t, "complete", event["action"])
	verification := event["verification"].(map[string]any)
	assert.Equal(t, []any{"mock-check:T-1010"}, verification["checks"])

	updates := output["file_updates"].([]any)
	require.Len(t, updates, 1)
	assert.Equal(t, "src/t-1010.txt", updates[0].(map[string]any)["path"])
}

func TestMock_CompleteUsesDeclaredOutputFile(t *testing.T) {
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID:   "T-1000",
		TaskKind: model.KindSpec,
		Status:   model.StatusInProgress,
		Outputs:  map[string]any{"files": []any{"docs/spec/custom.md"}},
	}))
	require.NoError(t, err)

	updates := output["file_updates"].([]any)
	require.Len(t, updates, 1)
	assert.Equal(t, "docs/spec/custom.md", updates[0].(map[string]any)["path"])
}

func TestMock_CompleteHotfixCarriesIssueLinkage(t *testing.T) {
	issueID := "ISS-0001"
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID:   "HF-ISS-0001",
		TaskKind: model.KindImpl,
		Status:   model.StatusInProgress,
		IsHotfix: true,
		IssueID:  &issueID,
		Fixes:    &[]string{"T-1010"},
	}))
	require.NoError(t, err)

	event := activityEvent(t, output)
	assert.Equal(t, "ISS-0001", event["issue_id"])
	assert.Equal(t, []any{"T-1010"}, event["fixes"])
	verification := event["verification"].(map[string]any)
	assert.Equal(t,
		[]any{"mock-check:HF-ISS-0001", "mock-hotfix-check:HF-ISS-0001"},
		verification["checks"])
}

func TestMock_ApprovesReview(t *testing.T) {
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID: "T-1020", TaskKind: model.KindQA, Status: model.StatusReview,
	}))
	require.NoError(t, err)

	event := activityEvent(t, output)
	assert.Equal(t, "review", event["action"])
	assert.Equal(t, model.DecisionApprove, event["decision"])
	assert.Equal(t, []any{"T-1020"}, event["tasks"])
}

func TestMock_ReportsIssueForUnactionableStatus(t *testing.T) {
	output, err := NewMock("").Execute(dispatch(model.Task{
		TaskID: "T-1010", TaskKind: model.KindImpl, Status: model.StatusDone,
	}))
	require.NoError(t, err)

	event := activityEvent(t, output)
	assert.Equal(t, "issue.report", event["action"])
	assert.Equal(t, "ISS-MOCK-T-1010", event["issue_id"])
	evidence := event["evidence"].(map[string]any)
	assert.Contains(t, evidence["symptom"], model.StatusDone)
}

func TestMock_Deterministic(t *testing.T) {
	ctx := dispatch(model.Task{
		TaskID: "T-1010", TaskKind: model.KindImpl, Status: model.StatusInProgress,
	})
	first, err := NewMock("").Execute(ctx)
	require.NoError(t, err)
	second, err := NewMock("").Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
