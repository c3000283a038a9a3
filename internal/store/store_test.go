package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/esaa/internal/model"
)

func writeLog(t *testing.T, root string, lines ...string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(EventStorePath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	content := ""
	for _, line := range lines {
		content += line + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestParse_EmptyStore(t *testing.T) {
	events, err := Parse(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParse_SkipsBlankLines(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root,
		`{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":1,"ts":"2025-01-01T00:00:00Z","actor":"orchestrator","action":"run.start","payload":{}}`,
		"",
		`{"schema_version":"0.4.0","event_id":"EV-00000002","event_seq":2,"ts":"2025-01-01T00:00:01Z","actor":"orchestrator","action":"verify.start","payload":{"strict":true}}`,
	)
	events, err := Parse(root)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, model.ActionRunStart, events[0].Action)
	assert.Equal(t, int64(2), events[1].EventSeq)
}

func TestParse_LegacyEventNormalized(t *testing.T) {
	root := t.TempDir()
	writeLog(t, root,
		`{"event_seq":1,"ts":"2024-01-01T00:00:00Z","actor":"orchestrator","action":"run.init","data":{"run_id":"RUN-LEGACY"}}`,
	)
	events, err := Parse(root)
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, model.ActionRunStart, events[0].Action)
	assert.Equal(t, "LEGACY-EV-00000001", events[0].EventID)
	assert.Equal(t, "0.3.0", events[0].SchemaVersion)
	assert.Equal(t, "RUN-LEGACY", events[0].Payload["run_id"])
	assert.Equal(t, model.RunInitialized, events[0].Payload["status"])
}

func TestParse_CorruptionCodes(t *testing.T) {
	valid := `{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":1,"ts":"2025-01-01T00:00:00Z","actor":"orchestrator","action":"run.start","payload":{}}`

	cases := []struct {
		name  string
		lines []string
		code  string
	}{
		{
			name:  "invalid json",
			lines: []string{`{"not json`},
			code:  model.CodeJSONLInvalid,
		},
		{
			name:  "seq missing",
			lines: []string{`{"schema_version":"0.4.0","event_id":"EV-00000001","ts":"t","actor":"a","action":"run.start","payload":{}}`},
			code:  model.CodeSeqInvalid,
		},
		{
			name:  "seq fractional",
			lines: []string{`{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":1.0,"ts":"t","actor":"a","action":"run.start","payload":{}}`},
			code:  model.CodeSeqInvalid,
		},
		{
			name: "seq gap",
			lines: []string{
				valid,
				`{"schema_version":"0.4.0","event_id":"EV-00000003","event_seq":3,"ts":"t","actor":"a","action":"run.end","payload":{}}`,
			},
			code: model.CodeSeqNonMonotonic,
		},
		{
			name:  "seq does not start at one",
			lines: []string{`{"schema_version":"0.4.0","event_id":"EV-00000002","event_seq":2,"ts":"t","actor":"a","action":"run.start","payload":{}}`},
			code:  model.CodeSeqNonMonotonic,
		},
		{
			name: "duplicate event id",
			lines: []string{
				valid,
				`{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":2,"ts":"t","actor":"a","action":"run.end","payload":{}}`,
			},
			code: model.CodeEventIDDuplicate,
		},
		{
			name:  "missing fields",
			lines: []string{`{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":1,"action":"run.start","payload":{}}`},
			code:  model.CodeEventMissingFields,
		},
		{
			name:  "unknown action",
			lines: []string{`{"schema_version":"0.4.0","event_id":"EV-00000001","event_seq":1,"ts":"t","actor":"a","action":"task.destroy","payload":{}}`},
			code:  model.CodeUnknownAction,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeLog(t, root, tc.lines...)
			_, err := Parse(root)
			require.Error(t, err)
			assert.True(t, model.IsCorrupt(err), "expected corruption, got %v", err)
			assert.Equal(t, tc.code, model.CodeOf(err))
		})
	}
}

func TestAppendThenParse_RoundTrip(t *testing.T) {
	root := t.TempDir()
	events := []model.Event{
		model.NewEvent(1, "2025-01-01T00:00:00Z", "orchestrator", model.ActionRunStart, map[string]any{"run_id": "RUN-0001"}),
		model.NewEvent(2, "2025-01-01T00:00:01Z", "agent-spec", model.ActionClaim, map[string]any{"task_id": "T-1000"}),
	}
	require.NoError(t, Append(root, events))
	require.NoError(t, Append(root, nil)) // no-op batch

	parsed, err := Parse(root)
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, "EV-00000001", parsed[0].EventID)
	assert.Equal(t, "RUN-0001", parsed[0].Payload["run_id"])
	assert.Equal(t, "agent-spec", parsed[1].Actor)
}

func TestNextSeq(t *testing.T) {
	assert.Equal(t, int64(1), NextSeq(nil))
	events := []model.Event{model.NewEvent(4, "t", "a", model.ActionRunEnd, nil)}
	assert.Equal(t, int64(5), NextSeq(events))
}

func TestTruncate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Append(root, []model.Event{
		model.NewEvent(1, "t", "a", model.ActionRunStart, nil),
	}))
	require.NoError(t, Truncate(root))

	events, err := Parse(root)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoadRoadmap_MissingAndUndecodable(t *testing.T) {
	root := t.TempDir()

	roadmap, err := LoadRoadmap(root)
	require.NoError(t, err)
	assert.Nil(t, roadmap)

	path := filepath.Join(root, filepath.FromSlash(RoadmapPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	roadmap, err = LoadRoadmap(root)
	require.NoError(t, err)
	assert.Nil(t, roadmap)
}

func TestSaveRoadmap_WritesIndentedJSON(t *testing.T) {
	root := t.TempDir()
	roadmap := &model.Roadmap{
		Meta:    model.Meta{SchemaVersion: model.SchemaVersion},
		Project: model.Project{Name: "esaa-core", AuditScope: ".roadmap/"},
		Tasks:   []model.Task{},
		Indexes: model.Indexes{ByStatus: map[string]int64{}, ByKind: map[string]int64{}},
	}
	require.NoError(t, SaveRoadmap(root, roadmap))

	raw, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(RoadmapPath)))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "  \"meta\"")
	assert.Equal(t, byte('\n'), raw[len(raw)-1])

	loaded, err := LoadRoadmap(root)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "esaa-core", loaded.Project.Name)
}
