package service

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/store"
)

// Process sweeps .roadmap/inbox/ for pending agent result files.
//
// Files are named {task_id}.json or {actor}__{task_id}.json; without an
// actor prefix the result is attributed to "agent-external". Accepted
// files move to inbox/done/, rejected ones to inbox/rejected/; with
// dryRun nothing moves and nothing is persisted.
func (s *Service) Process(dryRun bool) (*ProcessResult, error) {
	inbox := filepath.Join(s.root, filepath.FromSlash(store.InboxDir))
	if _, err := os.Stat(inbox); os.IsNotExist(err) {
		return &ProcessResult{Results: []ProcessEntry{}}, nil
	}

	doneDir := filepath.Join(s.root, filepath.FromSlash(store.InboxDoneDir))
	rejectedDir := filepath.Join(s.root, filepath.FromSlash(store.InboxRejectedDir))
	for _, dir := range []string{doneDir, rejectedDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	entries, err := os.ReadDir(inbox)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	result := &ProcessResult{Processed: len(files), Results: []ProcessEntry{}}
	for _, name := range files {
		actor := "agent-external"
		stem := strings.TrimSuffix(name, ".json")
		if idx := strings.Index(stem, "__"); idx >= 0 {
			actor = stem[:idx]
		}

		path := filepath.Join(inbox, name)
		entry, accepted := s.processOne(path, actor, dryRun)
		entry.File = name
		result.Results = append(result.Results, entry)

		target := rejectedDir
		if accepted {
			result.Accepted++
			target = doneDir
		} else {
			result.Rejected++
		}
		if !dryRun {
			if err := os.Rename(path, filepath.Join(target, name)); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

func (s *Service) processOne(path, actor string, dryRun bool) (ProcessEntry, bool) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ProcessEntry{Status: "rejected", Error: err.Error()}, false
	}

	var agentOutput map[string]any
	dec := json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&agentOutput); err != nil {
		return ProcessEntry{Status: "rejected", Error: err.Error()}, false
	}

	submitted, err := s.Submit(agentOutput, actor, dryRun)
	if err != nil {
		entry := ProcessEntry{Status: "rejected", Error: model.MessageOf(err)}
		if code := model.CodeOf(err); code != "" {
			entry.ErrorCode = code
		}
		return entry, false
	}
	return ProcessEntry{Status: "accepted", Result: submitted}, true
}
