package service

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/esaa/internal/contract"
	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/projector"
	"github.com/roach88/esaa/internal/store"
)

// Init establishes a fresh run: seeds the working tree, the default
// contract and result schema, and writes the genesis event batch
// (run.start, the seed tasks, and an initial verify pair).
//
// A store that already holds events blocks initialization unless force
// is set; force truncates and rewrites. An empty runID gets a generated
// RUN-<uuid> id.
func (s *Service) Init(runID, masterCorrelationID string, force bool) (*InitResult, error) {
	if runID == "" {
		runID = model.NewRunID()
	}
	if masterCorrelationID == "" {
		masterCorrelationID = "CID-ESAA-INIT"
	}

	if _, err := store.EnsureExists(s.root); err != nil {
		return nil, err
	}
	if !force {
		raw, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(store.EventStorePath)))
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(string(raw)) != "" {
			return nil, model.New(model.CodeInitBlocked, "event store already contains events; use --force to reinitialize")
		}
	}

	for _, rel := range []string{"docs/spec", "docs/qa", "src", "tests"} {
		if err := os.MkdirAll(filepath.Join(s.root, filepath.FromSlash(rel)), 0o755); err != nil {
			return nil, err
		}
	}
	if err := contract.WriteDefaults(s.root); err != nil {
		return nil, err
	}

	var events []model.Event
	seq := int64(1)
	events = append(events, s.newEvent(seq, "orchestrator", model.ActionRunStart, map[string]any{
		"run_id":                runID,
		"status":                model.RunInitialized,
		"master_correlation_id": masterCorrelationID,
		"baseline_id":           "B-000",
	}))
	seq++
	for _, task := range seedTasks() {
		events = append(events, s.newEvent(seq, "orchestrator", model.ActionTaskCreate, task))
		seq++
	}
	events = append(events, s.newEvent(seq, "orchestrator", model.ActionVerifyStart, map[string]any{"strict": true}))
	seq++

	preview, _, _, err := projector.Materialize(events, "")
	if err != nil {
		return nil, err
	}
	events = append(events, s.newEvent(seq, "orchestrator", model.ActionVerifyOK, map[string]any{
		"projection_hash_sha256": preview.Meta.Run.ProjectionHash,
	}))

	if err := store.Truncate(s.root); err != nil {
		return nil, err
	}
	if err := store.Append(s.root, events); err != nil {
		return nil, err
	}

	roadmap, issues, lessons, err := projector.Materialize(events, "")
	if err != nil {
		return nil, err
	}
	if err := s.saveViews(roadmap, issues, lessons); err != nil {
		return nil, err
	}
	return &InitResult{
		RunID:          runID,
		EventsWritten:  len(events),
		LastEventSeq:   roadmap.Meta.Run.LastEventSeq,
		ProjectionHash: roadmap.Meta.Run.ProjectionHash,
	}, nil
}

// seedTasks is the baseline spec -> impl -> qa chain every fresh run
// starts with.
func seedTasks() []map[string]any {
	return []map[string]any{
		{
			"task_id":     "T-1000",
			"task_kind":   model.KindSpec,
			"title":       "Create initial ESAA spec document",
			"description": "Produce the initial specification artifact for the ESAA core baseline.",
			"depends_on":  []any{},
			"targets":     []any{"spec-core"},
			"outputs":     map[string]any{"files": []any{"docs/spec/T-1000.md"}},
		},
		{
			"task_id":     "T-1010",
			"task_kind":   model.KindImpl,
			"title":       "Create initial implementation artifact",
			"description": "Produce the initial implementation artifact that follows the approved specification.",
			"depends_on":  []any{"T-1000"},
			"targets":     []any{"impl-core"},
			"outputs":     map[string]any{"files": []any{"src/T-1010.txt"}},
		},
		{
			"task_id":     "T-1020",
			"task_kind":   model.KindQA,
			"title":       "Create initial QA report",
			"description": "Produce the initial QA evidence artifact validating the implementation baseline.",
			"depends_on":  []any{"T-1010"},
			"targets":     []any{"qa-core"},
			"outputs":     map[string]any{"files": []any{"docs/qa/T-1020.md"}},
		},
	}
}

func (s *Service) saveViews(roadmap *model.Roadmap, issues *model.IssuesView, lessons *model.LessonsView) error {
	if err := store.SaveRoadmap(s.root, roadmap); err != nil {
		return err
	}
	if err := store.SaveIssues(s.root, issues); err != nil {
		return err
	}
	return store.SaveLessons(s.root, lessons)
}
