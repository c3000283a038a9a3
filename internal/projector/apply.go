package projector

import (
	"strings"

	"github.com/roach88/esaa/internal/model"
)

// apply dispatches one event into the state. Returned errors are domain
// errors: the event batch being applied is invalid against the current
// state, and nothing may be persisted.
func (s *state) apply(event model.Event) error {
	var err error
	switch event.Action {
	case model.ActionRunStart:
		s.applyRunStart(event)
	case model.ActionRunEnd:
		s.applyRunEnd(event)
	case model.ActionTaskCreate:
		err = s.applyTaskCreate(event)
	case model.ActionClaim:
		err = s.applyClaim(event)
	case model.ActionComplete:
		err = s.applyComplete(event)
	case model.ActionReview:
		err = s.applyReview(event)
	case model.ActionIssueReport:
		err = s.applyIssueReport(event)
	case model.ActionHotfixCreate:
		err = s.applyHotfixCreate(event)
	case model.ActionIssueResolve:
		err = s.applyIssueResolve(event)
	case model.ActionVerifyOK:
		s.meta.Run.VerifyStatus = model.VerifyOK
	case model.ActionVerifyFail:
		status := model.VerifyMismatch
		if v, ok := event.Payload["verify_status"].(string); ok {
			status = v
		}
		s.meta.Run.VerifyStatus = status
	case model.ActionRejected, model.ActionFileWrite, model.ActionViewMutate, model.ActionVerifyStart:
		// Audit-only events: recorded, never state-changing.
	default:
		err = model.Newf(model.CodeUnknownAction, "unknown action: %s", event.Action)
	}
	if err != nil {
		return err
	}

	s.meta.Run.LastEventSeq = event.EventSeq
	s.meta.UpdatedAt = event.TS
	return nil
}

func (s *state) applyRunStart(event model.Event) {
	if cid, ok := event.Payload["master_correlation_id"].(string); ok {
		s.meta.MasterCorrelationID = &cid
	} else {
		s.meta.MasterCorrelationID = nil
	}
	if runID, ok := event.Payload["run_id"].(string); ok {
		s.meta.Run.RunID = &runID
	}
	status := model.StringField(event.Payload, "status")
	if status == "" {
		status = model.RunInitialized
	}
	s.meta.Run.Status = status
}

func (s *state) applyRunEnd(event model.Event) {
	status := model.StringField(event.Payload, "status")
	if status == "" {
		status = model.RunSuccess
	}
	s.meta.Run.Status = status
}

func (s *state) applyTaskCreate(event model.Event) error {
	task, err := newTask(event.Payload)
	if err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)
	return nil
}

func (s *state) applyClaim(event model.Event) error {
	task, err := s.taskByID(model.StringField(event.Payload, "task_id"))
	if err != nil {
		return err
	}
	if task.Status == model.StatusDone {
		return model.New(model.CodeImmutableDone, "cannot claim a done task")
	}
	if task.Status == model.StatusInProgress || task.Status == model.StatusReview || task.AssignedTo != "" {
		return model.New(model.CodeLockedTask, "task is already locked")
	}
	task.Status = model.StatusInProgress
	task.AssignedTo = event.Actor
	task.StartedAt = event.TS
	return nil
}

func (s *state) applyComplete(event model.Event) error {
	task, err := s.taskByID(model.StringField(event.Payload, "task_id"))
	if err != nil {
		return err
	}
	if task.Status == model.StatusDone {
		return model.New(model.CodeImmutableDone, "cannot complete a done task")
	}
	if task.Status != model.StatusInProgress {
		return model.Newf(model.CodeInvalidTransition, "complete invalid for status=%s", task.Status)
	}
	if err := ensureOwner(task, event.Actor); err != nil {
		return err
	}
	task.Status = model.StatusReview

	if verification := model.MapField(event.Payload, "verification"); len(verification) > 0 {
		copied, err := model.CopyMap(verification)
		if err != nil {
			return model.Newf(model.CodeSchemaInvalid, "verification: %v", err)
		}
		task.Verification = copied
	}
	linkage, err := model.DecodePayload[struct {
		IssueID *string   `json:"issue_id"`
		Fixes   *[]string `json:"fixes"`
	}](event.Payload)
	if err != nil {
		return err
	}
	if _, ok := event.Payload["issue_id"]; ok {
		task.IssueID = presentString(linkage.IssueID)
	}
	if _, ok := event.Payload["fixes"]; ok {
		task.Fixes = presentList(linkage.Fixes)
	}
	return nil
}

func (s *state) applyReview(event model.Event) error {
	payload, err := model.DecodePayload[model.ReviewPayload](event.Payload)
	if err != nil {
		return err
	}
	task, err := s.taskByID(payload.TaskID)
	if err != nil {
		return err
	}
	if task.Status == model.StatusDone {
		return model.New(model.CodeImmutableDone, "cannot review a done task")
	}
	if task.Status != model.StatusReview {
		return model.Newf(model.CodeInvalidTransition, "review invalid for status=%s", task.Status)
	}
	if err := ensureOwner(task, event.Actor); err != nil {
		return err
	}
	switch payload.Decision {
	case model.DecisionApprove:
		task.Status = model.StatusDone
		task.CompletedAt = event.TS
	case model.DecisionRequestChanges:
		task.Status = model.StatusInProgress
	default:
		return model.Newf(model.CodeInvalidTransition, "review decision invalid: %s", payload.Decision)
	}
	return nil
}

func (s *state) applyIssueReport(event model.Event) error {
	payload := event.Payload
	issueID := model.StringField(payload, "issue_id")
	if issueID == "" {
		return model.New(model.CodeSchemaInvalid, "issue.report requires issue_id")
	}

	issue, known := s.issues[issueID]
	if !known {
		affected, err := model.CopyMap(model.MapField(payload, "affected"))
		if err != nil {
			return model.Newf(model.CodeSchemaInvalid, "affected: %v", err)
		}
		issue = &model.Issue{
			IssueID:    issueID,
			Severity:   "medium",
			Title:      issueID,
			BaselineID: optionalString(model.MapField(payload, "affected"), "baseline_id"),
			Affected:   affected,
			Links: model.IssueLinks{
				ReportedByTaskID: optionalString(payload, "task_id"),
				FixesTaskID:      copyAny(payload["fixes"]),
			},
			Timeline: model.IssueTimeline{CreatedEventSeq: event.EventSeq},
		}
		s.issues[issueID] = issue
	}

	// Re-reporting reopens and refreshes the mutable facts.
	issue.Status = "open"
	if severity, ok := payload["severity"].(string); ok {
		issue.Severity = severity
	}
	if title, ok := payload["title"].(string); ok {
		issue.Title = title
	}
	if evidence := model.MapField(payload, "evidence"); evidence != nil {
		copied, err := model.CopyMap(evidence)
		if err != nil {
			return model.Newf(model.CodeSchemaInvalid, "evidence: %v", err)
		}
		issue.Evidence = copied
	} else if issue.Evidence == nil {
		issue.Evidence = map[string]any{}
	}

	if model.StringField(payload, "category") == "process" && model.StringField(payload, "subtype") == "lesson" {
		if _, ok := payload["lesson"]; ok {
			return s.appendLesson(event)
		}
	}
	return nil
}

// appendLesson grows the lessons list; ids are assigned in insertion
// order and never reused.
func (s *state) appendLesson(event model.Event) error {
	payload := event.Payload
	lesson := model.MapField(payload, "lesson")

	mistake, okMistake := lesson["mistake"].(string)
	rule, okRule := lesson["rule"].(string)
	scope, okScope := lesson["scope"].(map[string]any)
	enforcement, okEnforcement := lesson["enforcement"].(map[string]any)
	if !okMistake || !okRule || !okScope || !okEnforcement {
		return model.New(model.CodeSchemaInvalid, "lesson requires mistake, rule, scope and enforcement")
	}
	if _, ok := enforcement["applies_to"].(string); !ok {
		return model.New(model.CodeSchemaInvalid, "lesson enforcement requires applies_to")
	}

	scopeCopy, err := model.CopyMap(scope)
	if err != nil {
		return model.Newf(model.CodeSchemaInvalid, "lesson scope: %v", err)
	}
	enforcementCopy, err := model.CopyMap(enforcement)
	if err != nil {
		return model.Newf(model.CodeSchemaInvalid, "lesson enforcement: %v", err)
	}

	lessonID := model.LessonID(len(s.lessons) + 1)
	title := model.StringField(payload, "title")
	if title == "" {
		title = lessonID
	}
	s.lessons = append(s.lessons, model.Lesson{
		LessonID:    lessonID,
		Status:      "active",
		CreatedAt:   event.TS,
		Title:       title,
		Mistake:     mistake,
		Rule:        rule,
		Scope:       scopeCopy,
		Enforcement: enforcementCopy,
		SourceRefs: []model.SourceRef{
			{TaskID: optionalString(payload, "task_id"), EventID: event.EventID},
		},
	})
	return nil
}

func (s *state) applyHotfixCreate(event model.Event) error {
	taskID := model.StringField(event.Payload, "task_id")
	for i := range s.tasks {
		if s.tasks[i].TaskID == taskID {
			return model.Newf(model.CodeDuplicateTask, "task already exists: %s", taskID)
		}
	}
	task, err := newTask(event.Payload)
	if err != nil {
		return err
	}
	s.tasks = append(s.tasks, task)

	if issueID := model.StringField(event.Payload, "issue_id"); issueID != "" {
		if issue, ok := s.issues[issueID]; ok {
			linked := taskID
			issue.Links.HotfixTaskID = &linked
		}
	}
	return nil
}

func (s *state) applyIssueResolve(event model.Event) error {
	issueID := model.StringField(event.Payload, "issue_id")
	issue, ok := s.issues[issueID]
	if !ok {
		return model.Newf(model.CodeIssueNotFound, "issue not found: %s", issueID)
	}
	resolution, err := model.CopyMap(model.MapField(event.Payload, "resolution"))
	if err != nil {
		return model.Newf(model.CodeSchemaInvalid, "resolution: %v", err)
	}
	issue.Status = "resolved"
	issue.Resolution = resolution
	resolvedSeq := event.EventSeq
	issue.Timeline.ResolvedEventSeq = &resolvedSeq
	return nil
}

func (s *state) taskByID(taskID string) (*model.Task, error) {
	for i := range s.tasks {
		if s.tasks[i].TaskID == taskID {
			return &s.tasks[i], nil
		}
	}
	return nil, model.Newf(model.CodeTaskNotFound, "task_id not found: %s", taskID)
}

func ensureOwner(task *model.Task, actor string) error {
	if task.AssignedTo != actor {
		return model.Newf(model.CodeNotLockOwner, "actor %s is not lock owner (%s)", actor, task.AssignedTo)
	}
	return nil
}

// newTask builds a roadmap task from a task.create or hotfix.create
// payload. Description falls back to the title when missing or blank.
func newTask(payload map[string]any) (model.Task, error) {
	decoded, err := model.DecodePayload[model.TaskPayload](payload)
	if err != nil {
		return model.Task{}, err
	}
	if decoded.TaskID == "" || decoded.TaskKind == "" || decoded.Title == "" {
		return model.Task{}, model.New(model.CodeSchemaInvalid, "task payload requires task_id, task_kind and title")
	}

	description := decoded.Description
	if strings.TrimSpace(description) == "" {
		description = decoded.Title
	}

	task := model.Task{
		TaskID:       decoded.TaskID,
		TaskKind:     decoded.TaskKind,
		Title:        decoded.Title,
		Description:  description,
		Status:       model.StatusTodo,
		DependsOn:    nonNil(decoded.DependsOn),
		Targets:      nonNil(decoded.Targets),
		Outputs:      map[string]any{"files": []any{}},
		Immutability: model.Immutability{DoneIsImmutable: true},
	}
	if v, ok := payload["outputs"]; ok {
		copied, err := model.CopyValue(v)
		if err != nil {
			return model.Task{}, model.Newf(model.CodeSchemaInvalid, "outputs: %v", err)
		}
		task.Outputs = copied
	}
	if decoded.IsHotfix {
		task.IsHotfix = true
		if _, ok := payload["issue_id"]; ok {
			task.IssueID = presentString(decoded.IssueID)
		}
		if _, ok := payload["fixes"]; ok {
			task.Fixes = presentList(decoded.Fixes)
		}
		if _, ok := payload["scope_patch"]; ok {
			task.ScopePatch = presentList(decoded.ScopePatch)
		}
		if _, ok := payload["required_verification"]; ok {
			task.RequiredVerification = presentList(decoded.RequiredVerification)
		}
		if _, ok := payload["baseline_id"]; ok {
			task.BaselineID = presentString(decoded.BaselineID)
		}
	}
	return task, nil
}

// presentString pins a payload key that exists into the projection: a
// decoded nil (explicit null) still lands as an empty string rather
// than the key vanishing from the canonical bytes.
func presentString(s *string) *string {
	if s == nil {
		s = new(string)
	}
	return s
}

// presentList pins a payload key that exists into the projection: a
// decoded nil (explicit null) stays null in the canonical bytes rather
// than the key vanishing.
func presentList(s *[]string) *[]string {
	if s == nil {
		s = new([]string)
	}
	return s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func optionalString(m map[string]any, key string) *string {
	if m == nil {
		return nil
	}
	if v, ok := m[key].(string); ok {
		return &v
	}
	return nil
}

func copyAny(v any) any {
	copied, err := model.CopyValue(v)
	if err != nil {
		return nil
	}
	return copied
}
