package model

// Canonical action set. Parsing rejects anything outside this set.
const (
	ActionRunStart     = "run.start"
	ActionRunEnd       = "run.end"
	ActionTaskCreate   = "task.create"
	ActionClaim        = "claim"
	ActionComplete     = "complete"
	ActionReview       = "review"
	ActionIssueReport  = "issue.report"
	ActionHotfixCreate = "hotfix.create"
	ActionIssueResolve = "issue.resolve"
	ActionRejected     = "output.rejected"
	ActionFileWrite    = "orchestrator.file.write"
	ActionViewMutate   = "orchestrator.view.mutate"
	ActionVerifyStart  = "verify.start"
	ActionVerifyOK     = "verify.ok"
	ActionVerifyFail   = "verify.fail"
)

var canonicalActions = map[string]struct{}{
	ActionRunStart:     {},
	ActionRunEnd:       {},
	ActionTaskCreate:   {},
	ActionClaim:        {},
	ActionComplete:     {},
	ActionReview:       {},
	ActionIssueReport:  {},
	ActionHotfixCreate: {},
	ActionIssueResolve: {},
	ActionRejected:     {},
	ActionFileWrite:    {},
	ActionViewMutate:   {},
	ActionVerifyStart:  {},
	ActionVerifyOK:     {},
	ActionVerifyFail:   {},
}

// IsCanonicalAction reports whether action is a member of the canonical
// action set.
func IsCanonicalAction(action string) bool {
	_, ok := canonicalActions[action]
	return ok
}

// Task lifecycle statuses.
const (
	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusReview     = "review"
	StatusDone       = "done"
)

// Task kinds.
const (
	KindSpec = "spec"
	KindImpl = "impl"
	KindQA   = "qa"
)

// Run statuses.
const (
	RunInitialized = "initialized"
	RunRunning     = "running"
	RunSuccess     = "success"
	RunFailed      = "failed"
	RunHalted      = "halted"
)

// Verify statuses.
const (
	VerifyUnknown   = "unknown"
	VerifyOK        = "ok"
	VerifyMismatch  = "mismatch"
	VerifyCorrupted = "corrupted"
)

// Review decisions.
const (
	DecisionApprove        = "approve"
	DecisionRequestChanges = "request_changes"
)
