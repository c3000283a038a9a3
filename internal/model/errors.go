package model

import (
	"errors"
	"fmt"
)

// Stable domain error codes.
const (
	// Validation errors (recoverable during run, fatal during submit).
	CodeSchemaInvalid     = "SCHEMA_INVALID"
	CodeUnknownAction     = "UNKNOWN_ACTION"
	CodeWorkflowGate      = "WORKFLOW_GATE"
	CodeBoundaryViolation = "BOUNDARY_VIOLATION"

	// Workflow errors (projector apply time).
	CodeNotLockOwner      = "NOT_LOCK_OWNER"
	CodeImmutableDone     = "IMMUTABLE_DONE"
	CodeLockedTask        = "LOCKED_TASK"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeTaskNotFound      = "TASK_NOT_FOUND"
	CodeDuplicateTask     = "DUPLICATE_TASK"
	CodeIssueNotFound     = "ISSUE_NOT_FOUND"

	// Environmental errors.
	CodeInitBlocked     = "INIT_BLOCKED"
	CodeInvalidArgument = "INVALID_ARGUMENT"
	CodeUnknownCommand  = "UNKNOWN_COMMAND"
	CodeLLMParseFailed  = "LLM_PARSE_FAILED"

	// Corruption codes (strictly stronger than domain errors).
	CodeJSONLInvalid       = "JSONL_INVALID"
	CodeSeqInvalid         = "EVENT_SEQ_INVALID"
	CodeSeqNonMonotonic    = "EVENT_SEQ_NON_MONOTONIC"
	CodeEventIDDuplicate   = "EVENT_ID_DUPLICATE"
	CodeEventMissingFields = "EVENT_MISSING_FIELDS"
)

// Error is a domain failure with a stable code. Codes are part of the
// external interface; messages are diagnostics only.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// New creates a domain error.
func New(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// CorruptError marks the event store itself as unreadable. It is a
// strictly stronger class than Error: verify reports "corrupted" and
// every operation short-circuits.
type CorruptError struct {
	Code    string
	Message string
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Corruptf creates a corruption error with a formatted message.
func Corruptf(code, format string, args ...any) *CorruptError {
	return &CorruptError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsCorrupt reports whether err (or anything it wraps) is a store
// corruption error.
func IsCorrupt(err error) bool {
	var ce *CorruptError
	return errors.As(err, &ce)
}

// CodeOf extracts the stable code from a domain or corruption error.
// Returns "" for foreign errors.
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	var ce *CorruptError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}

// MessageOf extracts the human-readable message from a domain or
// corruption error, falling back to err.Error().
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	var ce *CorruptError
	if errors.As(err, &ce) {
		return ce.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
