package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

func sampleEvents() []model.Event {
	return []model.Event{
		model.NewEvent(1, "2025-01-01T00:00:00Z", "orchestrator", model.ActionRunStart,
			map[string]any{"run_id": "RUN-0001"}),
		model.NewEvent(2, "2025-01-01T00:00:01Z", "agent-spec", model.ActionClaim,
			map[string]any{"task_id": "T-1000"}),
		model.NewEvent(3, "2025-01-01T00:00:02Z", "agent-spec", model.ActionComplete,
			map[string]any{"task_id": "T-1000"}),
		model.NewEvent(4, "2025-01-01T00:00:03Z", "agent-qa", model.ActionIssueReport,
			map[string]any{"task_id": "T-1000", "issue_id": "ISS-0001"}),
	}
}

func openIndex(t *testing.T) *Index {
	t.Helper()
	ix, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { ix.Close() })
	return ix
}

func TestRebuildAndQueryByTask(t *testing.T) {
	ix := openIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Rebuild(ctx, sampleEvents()))

	entries, err := ix.ByTask(ctx, "T-1000")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, int64(2), entries[0].EventSeq)
	assert.Equal(t, "EV-00000002", entries[0].EventID)
	assert.Equal(t, model.ActionIssueReport, entries[2].Action)
	assert.Equal(t, "ISS-0001", entries[2].IssueID)
}

func TestQueryByActorAndAction(t *testing.T) {
	ix := openIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Rebuild(ctx, sampleEvents()))

	byActor, err := ix.ByActor(ctx, "agent-spec")
	require.NoError(t, err)
	require.Len(t, byActor, 2)
	assert.Equal(t, model.ActionClaim, byActor[0].Action)

	byAction, err := ix.ByAction(ctx, model.ActionRunStart)
	require.NoError(t, err)
	require.Len(t, byAction, 1)
	assert.Equal(t, "orchestrator", byAction[0].Actor)
	assert.Empty(t, byAction[0].TaskID)
}

func TestRebuildReplacesPreviousContents(t *testing.T) {
	ix := openIndex(t)
	ctx := context.Background()
	require.NoError(t, ix.Rebuild(ctx, sampleEvents()))
	require.NoError(t, ix.Rebuild(ctx, sampleEvents()[:1]))

	entries, err := ix.ByTask(ctx, "T-1000")
	require.NoError(t, err)
	assert.Empty(t, entries)

	entries, err = ix.ByAction(ctx, model.ActionRunStart)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestRebuildFromStore(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, store.Append(root, sampleEvents()))

	ix, count, err := RebuildFromStore(context.Background(), root)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, 4, count)

	entries, err := ix.ByTask(context.Background(), "T-1000")
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestRebuildFromStore_CorruptLog(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, store.Append(root, []model.Event{
		model.NewEvent(5, "t", "a", model.ActionRunStart, nil),
	}))

	_, _, err := RebuildFromStore(context.Background(), root)
	require.Error(t, err)
	assert.True(t, model.IsCorrupt(err))
}
