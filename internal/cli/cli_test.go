package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

// execute runs the CLI against root with captured streams.
func execute(root string, args ...string) (stdout, stderr string, exitCode int) {
	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(append([]string{"--root", root}, args...))
	err := cmd.Execute()
	return out.String(), errBuf.String(), GetExitCode(err)
}

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &doc), "not JSON: %s", raw)
	return doc
}

func TestInitCommand(t *testing.T) {
	root := t.TempDir()
	stdout, stderr, code := execute(root, "init")
	assert.Equal(t, ExitSuccess, code)
	assert.Empty(t, stderr)

	doc := decode(t, stdout)
	assert.Equal(t, "RUN-0001", doc["run_id"])
	assert.Equal(t, float64(6), doc["events_written"])
	assert.NotEmpty(t, doc["projection_hash_sha256"])
}

func TestInitCommand_BlockedWithoutForce(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	stdout, stderr, code := execute(root, "init")
	assert.Equal(t, ExitDomainError, code)
	assert.Empty(t, stdout)
	envelope := decode(t, stderr)
	assert.Equal(t, model.CodeInitBlocked, envelope["error_code"])
	assert.NotEmpty(t, envelope["error_message"])

	_, _, code = execute(root, "init", "--force", "--run-id", "RUN-0002")
	assert.Equal(t, ExitSuccess, code)
}

func TestRunCommand_ToCompletion(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	stdout, _, code := execute(root, "run", "--steps", "20")
	assert.Equal(t, ExitSuccess, code)
	doc := decode(t, stdout)
	assert.Equal(t, float64(9), doc["steps_executed"])
	assert.Equal(t, "ok", doc["verify_status"])

	stdout, _, code = execute(root, "verify")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, "ok", decode(t, stdout)["verify_status"])
}

func TestVerifyCommand_MismatchExitsTwo(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	require.NoError(t, os.Remove(filepath.Join(root, filepath.FromSlash(store.RoadmapPath))))

	stdout, _, code := execute(root, "verify")
	assert.Equal(t, ExitVerifyFailed, code)
	doc := decode(t, stdout)
	assert.Equal(t, "mismatch", doc["verify_status"])
	assert.Equal(t, "roadmap_missing", doc["reason"])
}

func TestVerifyCommand_CorruptedExitsTwo(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	path := filepath.Join(root, filepath.FromSlash(store.EventStorePath))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	stdout, _, code := execute(root, "verify")
	assert.Equal(t, ExitVerifyFailed, code)
	doc := decode(t, stdout)
	assert.Equal(t, "corrupted", doc["verify_status"])
	assert.Equal(t, model.CodeJSONLInvalid, doc["error_code"])
	assert.Nil(t, doc["last_event_seq"])
	assert.Nil(t, doc["projection_hash_sha256"])
}

func TestSubmitCommand_ReadsFileAndStdin(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	payload := `{"activity_event":{"action":"claim","task_id":"T-1000"}}`
	file := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(file, []byte(payload), 0o644))

	stdout, _, code := execute(root, "submit", file, "--actor", "agent-spec")
	assert.Equal(t, ExitSuccess, code)
	doc := decode(t, stdout)
	assert.Equal(t, "accepted", doc["status"])
	assert.Equal(t, "claim", doc["action"])

	cmd := NewRootCommand()
	var out, errBuf bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errBuf)
	cmd.SetIn(bytes.NewBufferString(`{"activity_event":{"action":"complete","task_id":"T-1000","verification":{"checks":["manual"]}}}`))
	cmd.SetArgs([]string{"--root", root, "submit", "-", "--actor", "agent-spec"})
	require.NoError(t, cmd.Execute(), "stderr: %s", errBuf.String())
	assert.Equal(t, "complete", decode(t, out.String())["action"])
}

func TestSubmitCommand_DomainErrorEnvelope(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	file := filepath.Join(t.TempDir(), "result.json")
	require.NoError(t, os.WriteFile(file,
		[]byte(`{"activity_event":{"action":"claim","task_id":"T-9999"}}`), 0o644))

	stdout, stderr, code := execute(root, "submit", file, "--actor", "agent-x")
	assert.Equal(t, ExitDomainError, code)
	assert.Empty(t, stdout)
	envelope := decode(t, stderr)
	assert.Equal(t, model.CodeTaskNotFound, envelope["error_code"])
}

func TestProjectAndReplayCommands(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	stdout, _, code := execute(root, "project")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, float64(3), decode(t, stdout)["tasks"])

	stdout, _, code = execute(root, "replay", "--until", "3", "--no-write")
	assert.Equal(t, ExitSuccess, code)
	doc := decode(t, stdout)
	assert.Equal(t, float64(3), doc["events_replayed"])

	stdout, _, code = execute(root, "replay", "--until", "EV-00000002", "--no-write")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, float64(2), decode(t, stdout)["events_replayed"])
}

func TestProcessCommand_SweepsInbox(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	inbox := filepath.Join(root, filepath.FromSlash(store.InboxDir))
	require.NoError(t, os.MkdirAll(inbox, 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(inbox, "agent-spec__T-1000.json"),
		[]byte(`{"activity_event":{"action":"claim","task_id":"T-1000"}}`), 0o644))

	stdout, _, code := execute(root, "process")
	assert.Equal(t, ExitSuccess, code)
	doc := decode(t, stdout)
	assert.Equal(t, float64(1), doc["processed"])
	assert.Equal(t, float64(1), doc["accepted"])
}

func TestTraceCommand(t *testing.T) {
	root := t.TempDir()
	_, _, code := execute(root, "init")
	require.Equal(t, ExitSuccess, code)

	stdout, _, code := execute(root, "trace", "--task", "T-1000")
	assert.Equal(t, ExitSuccess, code)
	doc := decode(t, stdout)
	assert.Equal(t, float64(6), doc["indexed"])
	assert.Equal(t, float64(1), doc["matches"])

	_, stderr, code := execute(root, "trace")
	assert.Equal(t, ExitDomainError, code)
	assert.Equal(t, model.CodeInvalidArgument, decode(t, stderr)["error_code"])
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitDomainError, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitVerifyFailed, GetExitCode(&ExitError{Code: ExitVerifyFailed}))
}
