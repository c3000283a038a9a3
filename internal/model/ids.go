package model

import (
	"fmt"

	"github.com/google/uuid"
)

// NewRunID generates a time-sortable run identifier for callers that do
// not name the run themselves. UUIDv7 embeds a timestamp in the most
// significant bits, so run ids sort by creation time.
func NewRunID() string {
	return "RUN-" + uuid.Must(uuid.NewV7()).String()
}

// LessonID formats the sequential lesson id for insertion position n
// (1-based).
func LessonID(n int) string {
	return fmt.Sprintf("LES-%04d", n)
}

// HotfixTaskID derives the synthesized hotfix task id for an issue.
func HotfixTaskID(issueID string) string {
	return "HF-" + issueID
}
