package model

// Roadmap is the authoritative projection snapshot. The stored
// roadmap.json is exactly this structure.
type Roadmap struct {
	Meta    Meta    `json:"meta"`
	Project Project `json:"project"`
	Tasks   []Task  `json:"tasks"`
	Indexes Indexes `json:"indexes"`
}

// Meta carries projection-level bookkeeping. Everything under Meta
// except SchemaVersion is excluded from the projection hash, which is
// what makes verify stable across wall-clock time.
type Meta struct {
	SchemaVersion       string  `json:"schema_version"`
	ESAAVersion         string  `json:"esaa_version"`
	ImmutableDone       bool    `json:"immutable_done"`
	MasterCorrelationID *string `json:"master_correlation_id"`
	Run                 RunMeta `json:"run"`
	UpdatedAt           string  `json:"updated_at"`
}

// RunMeta tracks the current run.
type RunMeta struct {
	RunID          *string `json:"run_id"`
	Status         string  `json:"status"`
	LastEventSeq   int64   `json:"last_event_seq"`
	ProjectionHash string  `json:"projection_hash_sha256"`
	VerifyStatus   string  `json:"verify_status"`
}

// Project identifies the audited project.
type Project struct {
	Name       string `json:"name"`
	AuditScope string `json:"audit_scope"`
}

// Indexes are count indexes rebuilt after every fold, keys sorted.
type Indexes struct {
	ByStatus map[string]int64 `json:"by_status"`
	ByKind   map[string]int64 `json:"by_kind"`
}

// Immutability flags a task's terminal-state policy.
type Immutability struct {
	DoneIsImmutable bool `json:"done_is_immutable"`
}

// Task is one roadmap entry. Base fields are always present; ownership
// fields accrue through the lifecycle and are omitted until set.
type Task struct {
	TaskID      string   `json:"task_id"`
	TaskKind    string   `json:"task_kind"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	DependsOn   []string `json:"depends_on"`
	Targets     []string `json:"targets"`

	// Outputs carries the creating payload's outputs object verbatim;
	// its exact shape feeds the projection hash.
	Outputs      any          `json:"outputs"`
	Immutability Immutability `json:"immutability"`

	// Hotfix-only fields, set when the creating payload carries the
	// key. Pointers keep present-but-empty values in the canonical
	// bytes; only an absent key is omitted.
	IsHotfix             bool      `json:"is_hotfix,omitempty"`
	IssueID              *string   `json:"issue_id,omitempty"`
	Fixes                *[]string `json:"fixes,omitempty"`
	ScopePatch           *[]string `json:"scope_patch,omitempty"`
	RequiredVerification *[]string `json:"required_verification,omitempty"`
	BaselineID           *string   `json:"baseline_id,omitempty"`

	// Ownership fields accrued through the lifecycle.
	AssignedTo   string         `json:"assigned_to,omitempty"`
	StartedAt    string         `json:"started_at,omitempty"`
	CompletedAt  string         `json:"completed_at,omitempty"`
	Verification map[string]any `json:"verification,omitempty"`
}

// IssueLinks back-links an issue to the tasks in its lifecycle.
type IssueLinks struct {
	ReportedByTaskID *string `json:"reported_by_task_id"`
	FixesTaskID      any     `json:"fixes_task_id"`
	HotfixTaskID     *string `json:"hotfix_task_id"`
}

// IssueTimeline records the event positions bounding an issue.
type IssueTimeline struct {
	CreatedEventSeq  int64  `json:"created_event_seq"`
	ResolvedEventSeq *int64 `json:"resolved_event_seq"`
}

// Issue is one reported problem; open until resolved.
type Issue struct {
	IssueID    string         `json:"issue_id"`
	Status     string         `json:"status"`
	Severity   string         `json:"severity"`
	Title      string         `json:"title"`
	BaselineID *string        `json:"baseline_id"`
	Affected   map[string]any `json:"affected"`
	Evidence   map[string]any `json:"evidence"`
	Resolution map[string]any `json:"resolution"`
	Links      IssueLinks     `json:"links"`
	Timeline   IssueTimeline  `json:"timeline"`
}

// SourceRef back-links a lesson to the event that produced it.
type SourceRef struct {
	TaskID  *string `json:"task_id"`
	EventID string  `json:"event_id"`
}

// Lesson is an accumulated process lesson. Scope and Enforcement stay
// loose maps: their inner shape belongs to the reporting agent, and the
// projector only reads scope.task_kinds and enforcement.applies_to.
type Lesson struct {
	LessonID    string         `json:"lesson_id"`
	Status      string         `json:"status"`
	CreatedAt   string         `json:"created_at"`
	Title       string         `json:"title"`
	Mistake     string         `json:"mistake"`
	Rule        string         `json:"rule"`
	Scope       map[string]any `json:"scope"`
	Enforcement map[string]any `json:"enforcement"`
	SourceRefs  []SourceRef    `json:"source_refs"`
}

// IssuesViewMeta heads the issues view file.
type IssuesViewMeta struct {
	SchemaVersion    string `json:"schema_version"`
	ESAAVersion      string `json:"esaa_version"`
	GeneratedBy      string `json:"generated_by"`
	SourceEventStore string `json:"source_event_store"`
	LastEventSeq     int64  `json:"last_event_seq"`
	UpdatedAt        string `json:"updated_at"`
}

// IssuesIndexes indexes open issues by baseline, keys sorted.
type IssuesIndexes struct {
	OpenByBaseline map[string][]string `json:"open_by_baseline"`
}

// IssuesView is the derived issues snapshot, sorted by issue_id.
type IssuesView struct {
	Meta    IssuesViewMeta `json:"meta"`
	Issues  []Issue        `json:"issues"`
	Indexes IssuesIndexes  `json:"indexes"`
}

// LessonsViewMeta heads the lessons view file.
type LessonsViewMeta struct {
	SchemaVersion    string `json:"schema_version"`
	ESAAVersion      string `json:"esaa_version"`
	GeneratedBy      string `json:"generated_by"`
	SourceEventStore string `json:"source_event_store"`
	UpdatedAt        string `json:"updated_at"`
}

// LessonsIndexes indexes lessons by task kind and enforcement target,
// keys sorted. Lesson order inside each bucket preserves insertion.
type LessonsIndexes struct {
	ByTaskKind           map[string][]string `json:"by_task_kind"`
	ByEnforcementApplies map[string][]string `json:"by_enforcement_applies_to"`
}

// LessonsView is the derived lessons snapshot in insertion order.
type LessonsView struct {
	Meta    LessonsViewMeta `json:"meta"`
	Lessons []Lesson        `json:"lessons"`
	Indexes LessonsIndexes  `json:"indexes"`
}

// OutputFiles extracts outputs.files when outputs is an object holding
// a list of strings. Any other shape yields nil: outputs is free-form
// payload data and only this one layout names concrete files.
func (t *Task) OutputFiles() []string {
	obj, ok := t.Outputs.(map[string]any)
	if !ok {
		return nil
	}
	raw, ok := obj["files"].([]any)
	if !ok {
		return nil
	}
	files := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return nil
		}
		files = append(files, s)
	}
	return files
}

// TaskByID finds a task in the roadmap.
func (r *Roadmap) TaskByID(taskID string) (*Task, error) {
	for i := range r.Tasks {
		if r.Tasks[i].TaskID == taskID {
			return &r.Tasks[i], nil
		}
	}
	return nil, Newf(CodeTaskNotFound, "task_id not found: %s", taskID)
}

// HashInput returns the substructure the projection hash covers:
// (schema_version, project, tasks, indexes). Meta is deliberately
// excluded so materializing at different wall-clock times hashes equal.
func (r *Roadmap) HashInput() map[string]any {
	return map[string]any{
		"schema_version": r.Meta.SchemaVersion,
		"project":        r.Project,
		"tasks":          r.Tasks,
		"indexes":        r.Indexes,
	}
}

// ProjectionHash computes the SHA-256 projection hash over the
// canonical JSON of HashInput.
func (r *Roadmap) ProjectionHash() (string, error) {
	return SHA256Hex(r.HashInput())
}
