package service

import (
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/roach88/esaa/internal/contract"
	"github.com/roach88/esaa/internal/model"
	"github.com/roach88/esaa/internal/projector"
	"github.com/roach88/esaa/internal/store"
	"github.com/roach88/esaa/internal/validator"
	"github.com/roach88/esaa/internal/workflow"
)

// Run drives the orchestration loop for up to steps dispatches. Each
// step selects the next actionable task, hands it to the adapter, and
// validates whatever comes back. A rejected result does not stop the
// loop: it is recorded as an output.rejected audit event and the run
// moves on. The loop ends early when no task is actionable.
func (s *Service) Run(steps int, dryRun bool) (*RunResult, error) {
	if steps < 1 {
		return nil, model.New(model.CodeInvalidArgument, "steps must be >= 1")
	}

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

	var newEvents []model.Event
	filesWritten := 0
	rejected := 0
	executed := 0

	for step := 0; step < steps; step++ {
		roadmap, _, _, err := projector.Materialize(append(events, newEvents...), "")
		if err != nil {
			return nil, err
		}
		task := workflow.SelectNextTask(roadmap.Tasks)
		if task == nil {
			break
		}
		executed++
		currentSeq := store.NextSeq(append(events, newEvents...))

		stepEvents, n, sourceAction, stepErr := s.runStep(events, newEvents, roadmap, task, c, schema, currentSeq, dryRun)
		if stepErr != nil {
			rejected++
			newEvents = append(newEvents, s.rejectEvent(currentSeq, task.TaskID, sourceAction, stepErr))
			continue
		}
		newEvents = append(newEvents, stepEvents...)
		filesWritten += n
	}

	sealed, finalRoadmap, finalIssues, finalLessons, err := s.sealBatch(events, newEvents, false)
	if err != nil {
		return nil, err
	}

	if !dryRun {
		if err := store.Append(s.root, sealed); err != nil {
			return nil, err
		}
		if err := s.saveViews(finalRoadmap, finalIssues, finalLessons); err != nil {
			return nil, err
		}
	}

	return &RunResult{
		StepsRequested: steps,
		StepsExecuted:  executed,
		EventsAppended: len(sealed),
		Rejected:       rejected,
		FilesWritten:   filesWritten,
		LastEventSeq:   finalRoadmap.Meta.Run.LastEventSeq,
		VerifyStatus:   finalRoadmap.Meta.Run.VerifyStatus,
		ProjectionHash: finalRoadmap.Meta.Run.ProjectionHash,
	}, nil
}

// runStep executes one dispatch and returns the composed candidate
// events for it. Every returned error is a rejection of this step, not
// a failure of the run.
func (s *Service) runStep(
	events, newEvents []model.Event,
	roadmap *model.Roadmap,
	task *model.Task,
	c *contract.Contract,
	schema *jsonschema.Schema,
	currentSeq int64,
	dryRun bool,
) (candidate []model.Event, filesWritten int, sourceAction string, err error) {
	sourceAction = "unknown"

	ctx, err := workflow.BuildDispatchContext(roadmap, task, c)
	if err != nil {
		return nil, 0, sourceAction, err
	}

	output, err := s.adapter.Execute(ctx)
	if err != nil {
		return nil, 0, sourceAction, model.Newf(model.CodeLLMParseFailed, "adapter output unusable: %v", err)
	}
	if action := model.StringField(model.MapField(output, "activity_event"), "action"); action != "" {
		sourceAction = action
	}

	activityEvent, fileUpdates, err := validator.Validate(output, schema, c, task)
	if err != nil {
		return nil, 0, sourceAction, err
	}

	base := append(append([]model.Event(nil), events...), newEvents...)
	agentEvent := s.newEvent(currentSeq, s.adapter.AgentID(), model.StringField(activityEvent, "action"), activityEvent)
	candidate = []model.Event{agentEvent}
	if _, _, _, err := projector.Materialize(append(base, candidate...), ""); err != nil {
		return nil, 0, sourceAction, err
	}

	if len(fileUpdates) > 0 {
		paths := make([]any, len(fileUpdates))
		for i, update := range fileUpdates {
			paths[i] = validator.NormalizeRelPath(update.Path)
		}
		writeEvent := s.newEvent(currentSeq+1, "orchestrator", model.ActionFileWrite, map[string]any{
			"task_id": task.TaskID,
			"files":   paths,
		})
		candidate = append(candidate, writeEvent)
		if _, _, _, err := projector.Materialize(append(base, candidate...), ""); err != nil {
			return nil, 0, sourceAction, err
		}

		if !dryRun {
			n, err := s.writeFiles(fileUpdates)
			if err != nil {
				return nil, 0, sourceAction, err
			}
			filesWritten = n
		}
	}

	if agentEvent.Action == model.ActionIssueReport {
		if hotfix := workflow.BuildHotfixEvent(append(base, candidate...), activityEvent, s.timestamp()); hotfix != nil {
			candidate = append(candidate, *hotfix)
			if _, _, _, err := projector.Materialize(append(base, candidate...), ""); err != nil {
				return nil, 0, sourceAction, err
			}
		}
	}
	return candidate, filesWritten, sourceAction, nil
}

// rejectEvent records a refused agent result as an audit event.
func (s *Service) rejectEvent(seq int64, taskID, sourceAction string, cause error) model.Event {
	code := model.CodeOf(cause)
	if code == "" {
		code = model.CodeLLMParseFailed
	}
	return s.newEvent(seq, "orchestrator", model.ActionRejected, map[string]any{
		"task_id":       taskID,
		"error_code":    code,
		"message":       model.MessageOf(cause),
		"source_action": sourceAction,
	})
}
