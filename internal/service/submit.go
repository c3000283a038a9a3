package service

import (
	"os"
	"path/filepath"

	"github.com/roach88/esaa/internal/contract"
	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/projector"
	"github.com/roach88/esaa/internal/store"
	"github.com/roach88/esaa/internal/validator"
	"github.com/roach88/esaa/internal/workflow"
)

// Submit validates and applies a single agent result submitted from
// outside the process. This is the interface for real LLM agents that
// read .roadmap/ and produce a structured result against the agent
// result schema.
//
// The batch is composed in memory and tentatively materialized at every
// step; nothing reaches the store or the working tree until the whole
// batch survives. With dryRun the store and views stay untouched and no
// file is written.
func (s *Service) Submit(agentOutput map[string]any, actor string, dryRun bool) (*SubmitResult, error) {
	events, err := store.Parse(s.root)
	if err != nil {
		return nil, err
	}
	c, err := contract.Load(s.root)
	if err != nil {
		return nil, err
	}
	schema, err := contract.LoadResultSchema(s.root)
	if err != nil {
		return nil, err
	}
	roadmap, _, _, err := projector.Materialize(events, "")
	if err != nil {
		return nil, err
	}

	activityEvent := model.MapField(agentOutput, "activity_event")
	taskID := model.StringField(activityEvent, "task_id")
	if taskID == "" {
		return nil, model.New(model.CodeSchemaInvalid, "activity_event.task_id is required")
	}
	task, err := roadmap.TaskByID(taskID)
	if err != nil {
		return nil, err
	}

	validated, fileUpdates, err := validator.Validate(agentOutput, schema, c, task)
	if err != nil {
		return nil, err
	}

	currentSeq := store.NextSeq(events)
	agentEvent := s.newEvent(currentSeq, actor, model.StringField(validated, "action"), validated)
	candidate := []model.Event{agentEvent}
	if _, _, _, err := projector.Materialize(append(events, candidate...), ""); err != nil {
		return nil, err
	}

	filesWritten := 0
	if len(fileUpdates) > 0 {
		paths := make([]any, len(fileUpdates))
		for i, update := range fileUpdates {
			paths[i] = validator.NormalizeRelPath(update.Path)
		}
		writeEvent := s.newEvent(currentSeq+1, "orchestrator", model.ActionFileWrite, map[string]any{
			"task_id": taskID,
			"files":   paths,
		})
		candidate = append(candidate, writeEvent)
		if _, _, _, err := projector.Materialize(append(events, candidate...), ""); err != nil {
			return nil, err
		}

		if !dryRun {
			n, err := s.writeFiles(fileUpdates)
			if err != nil {
				return nil, err
			}
			filesWritten = n
		}
	}

	if agentEvent.Action == model.ActionIssueReport {
		if hotfix := workflow.BuildHotfixEvent(append(events, candidate...), validated, s.timestamp()); hotfix != nil {
			candidate = append(candidate, *hotfix)
			if _, _, _, err := projector.Materialize(append(events, candidate...), ""); err != nil {
				return nil, err
			}
		}
	}

	newEvents, finalRoadmap, finalIssues, finalLessons, err := s.sealBatch(events, candidate, true)
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := store.Append(s.root, newEvents); err != nil {
			return nil, err
		}
		if err := s.saveViews(finalRoadmap, finalIssues, finalLessons); err != nil {
			return nil, err
		}
	}

	return &SubmitResult{
		Status:         "accepted",
		Actor:          actor,
		TaskID:         taskID,
		Action:         agentEvent.Action,
		EventsAppended: len(newEvents),
		FilesWritten:   filesWritten,
		LastEventSeq:   finalRoadmap.Meta.Run.LastEventSeq,
		VerifyStatus:   finalRoadmap.Meta.Run.VerifyStatus,
		ProjectionHash: finalRoadmap.Meta.Run.ProjectionHash,
	}, nil
}

// sealBatch closes a composed batch with the orchestrator framing:
// verify.start, run.end when every task is done, and the final
// verify.ok carrying the projection hash. When startBeforeRunEnd is
// set the verify.start lands before the run-completion check (the
// submit ordering); otherwise after (the run-loop ordering).
func (s *Service) sealBatch(events, candidate []model.Event, startBeforeRunEnd bool) ([]model.Event, *model.Roadmap, *model.IssuesView, *model.LessonsView, error) {
	newEvents := append([]model.Event(nil), candidate...)
	all := append(append([]model.Event(nil), events...), candidate...)

	appendFraming := func(actor, action string, payload map[string]any) {
		event := s.newEvent(store.NextSeq(all), actor, action, payload)
		all = append(all, event)
		newEvents = append(newEvents, event)
	}

	if startBeforeRunEnd {
		appendFraming("orchestrator", model.ActionVerifyStart, map[string]any{"strict": true})
	}

	roadmap, issues, lessons, err := projector.Materialize(all, "")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if workflow.AllTasksDone(roadmap.Tasks) && roadmap.Meta.Run.Status != model.RunSuccess {
		appendFraming("orchestrator", model.ActionRunEnd, map[string]any{"status": model.RunSuccess})
		roadmap, issues, lessons, err = projector.Materialize(all, "")
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	if !startBeforeRunEnd {
		appendFraming("orchestrator", model.ActionVerifyStart, map[string]any{"strict": true})
		roadmap, issues, lessons, err = projector.Materialize(all, "")
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}

	appendFraming("orchestrator", model.ActionVerifyOK, map[string]any{
		"projection_hash_sha256": roadmap.Meta.Run.ProjectionHash,
	})
	roadmap, issues, lessons, err = projector.Materialize(all, "")
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return newEvents, roadmap, issues, lessons, nil
}

func (s *Service) writeFiles(updates []validator.FileUpdate) (int, error) {
	written := 0
	for _, update := range updates {
		rel, err := validator.SafeRelPath(update.Path)
		if err != nil {
			return written, err
		}
		path := filepath.Join(s.root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, err
		}
		if err := os.WriteFile(path, []byte(update.Content), 0o644); err != nil {
			return written, err
		}
		written++
	}
	return written, nil
}
