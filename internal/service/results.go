package service

// Operation results. These serialize directly to the CLI's JSON stdout,
// so field names and omission rules are part of the external interface.

// InitResult reports a completed initialization.
type InitResult struct {
	RunID          string `json:"run_id"`
	EventsWritten  int    `json:"events_written"`
	LastEventSeq   int64  `json:"last_event_seq"`
	ProjectionHash string `json:"projection_hash_sha256"`
}

// ProjectResult reports a full re-materialization.
type ProjectResult struct {
	LastEventSeq   int64  `json:"last_event_seq"`
	ProjectionHash string `json:"projection_hash_sha256"`
	Tasks          int    `json:"tasks"`
	Issues         int    `json:"issues"`
	Lessons        int    `json:"lessons"`
}

// VerifyResult reports integrity of the stored views against the log.
// On corruption the seq and hash are unknowable and stay null.
type VerifyResult struct {
	VerifyStatus   string  `json:"verify_status"`
	Reason         string  `json:"reason,omitempty"`
	ErrorCode      string  `json:"error_code,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	LastEventSeq   *int64  `json:"last_event_seq"`
	ProjectionHash *string `json:"projection_hash_sha256"`

	StoredLastEventSeq   *int64  `json:"stored_last_event_seq,omitempty"`
	StoredProjectionHash *string `json:"stored_projection_hash_sha256,omitempty"`
}

// ReplayResult reports a bounded re-fold of the log.
type ReplayResult struct {
	EventsReplayed int    `json:"events_replayed"`
	LastEventSeq   int64  `json:"last_event_seq"`
	ProjectionHash string `json:"projection_hash_sha256"`
	VerifyStatus   string `json:"verify_status"`
}

// SubmitResult reports one accepted external agent result.
type SubmitResult struct {
	Status         string `json:"status"`
	Actor          string `json:"actor"`
	TaskID         string `json:"task_id"`
	Action         string `json:"action"`
	EventsAppended int    `json:"events_appended"`
	FilesWritten   int    `json:"files_written"`
	LastEventSeq   int64  `json:"last_event_seq"`
	VerifyStatus   string `json:"verify_status"`
	ProjectionHash string `json:"projection_hash_sha256"`
}

// ProcessEntry is the outcome for one inbox file.
type ProcessEntry struct {
	Status    string        `json:"status"`
	File      string        `json:"file,omitempty"`
	ErrorCode string        `json:"error_code,omitempty"`
	Error     string        `json:"error,omitempty"`
	Result    *SubmitResult `json:"result,omitempty"`
}

// ProcessResult reports an inbox sweep.
type ProcessResult struct {
	Processed int            `json:"processed"`
	Accepted  int            `json:"accepted"`
	Rejected  int            `json:"rejected"`
	Results   []ProcessEntry `json:"results"`
}

// RunResult reports an orchestration loop.
type RunResult struct {
	StepsRequested int    `json:"steps_requested"`
	StepsExecuted  int    `json:"steps_executed"`
	EventsAppended int    `json:"events_appended"`
	Rejected       int    `json:"rejected"`
	FilesWritten   int    `json:"files_written"`
	LastEventSeq   int64  `json:"last_event_seq"`
	VerifyStatus   string `json:"verify_status"`
	ProjectionHash string `json:"projection_hash_sha256"`
}

// TraceResult reports an index query.
type TraceResult struct {
	Indexed int `json:"indexed"`
	Matches int `json:"matches"`
	Events  any `json:"events"`
}
