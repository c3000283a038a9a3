package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/esaa/internal/store"
)

func seededRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, WriteDefaults(root))
	return root
}

func TestLoad_Defaults(t *testing.T) {
	c, err := Load(seededRoot(t))
	require.NoError(t, err)

	assert.True(t, c.AllowsAction("claim"))
	assert.True(t, c.AllowsAction("issue.resolve"))
	assert.False(t, c.AllowsAction("task.create"))

	assert.True(t, c.IsForbiddenField("event_seq"))
	assert.True(t, c.IsForbiddenField("actor"))
	assert.False(t, c.IsForbiddenField("notes"))

	assert.True(t, c.Boundaries.PatchScope.Enabled)

	impl, err := c.KindBoundaries("impl")
	require.NoError(t, err)
	assert.Equal(t, []string{"src/**"}, impl.Write)
	assert.Contains(t, impl.ForbiddenWrite, ".roadmap/**")

	_, err = c.KindBoundaries("ops")
	assert.Error(t, err)
}

func TestLoad_MissingContract(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedContract(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{
			name: "missing vocabulary",
			yaml: `schema_version: "0.4.0"
output_contract:
  activity_event:
    forbidden_fields: [actor]
boundaries:
  patch_scope:
    enabled: true
  by_task_kind: {}
`,
		},
		{
			name: "allowed actions not a list",
			yaml: `schema_version: "0.4.0"
vocabulary:
  allowed_agent_actions: claim
output_contract:
  activity_event:
    forbidden_fields: [actor]
boundaries:
  patch_scope:
    enabled: true
  by_task_kind: {}
`,
		},
		{
			name: "boundary write not strings",
			yaml: `schema_version: "0.4.0"
vocabulary:
  allowed_agent_actions: [claim]
output_contract:
  activity_event:
    forbidden_fields: [actor]
boundaries:
  patch_scope:
    enabled: true
  by_task_kind:
    impl:
      read: ["src/**"]
      write: [42]
      forbidden_write: []
`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			path := filepath.Join(root, filepath.FromSlash(store.AgentContractPath))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))

			_, err := Load(root)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "contract")
		})
	}
}

func TestLoadResultSchema_ValidatesOutputs(t *testing.T) {
	schema, err := LoadResultSchema(seededRoot(t))
	require.NoError(t, err)

	valid := map[string]any{
		"activity_event": map[string]any{"action": "claim", "task_id": "T-1000"},
	}
	assert.NoError(t, schema.Validate(valid))

	missing := map[string]any{
		"activity_event": map[string]any{"action": "claim"},
	}
	assert.Error(t, schema.Validate(missing))
}

func TestWriteDefaults_DoesNotOverwrite(t *testing.T) {
	root := seededRoot(t)
	path := filepath.Join(root, filepath.FromSlash(store.AgentContractPath))
	require.NoError(t, os.WriteFile(path, []byte("schema_version: custom\n"), 0o644))

	require.NoError(t, WriteDefaults(root))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "schema_version: custom\n", string(raw))
}
