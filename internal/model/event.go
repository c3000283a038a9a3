package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Versions stamped on emitted events and views.
const (
	SchemaVersion = "0.4.0"
	ESAAVersion   = "0.4.x"
)

// DefaultProjectName is used when the caller does not name the project.
const DefaultProjectName = "esaa-core"

// Event is the only durable write in the system. Events are immutable
// once appended to the store.
//
// Payload stays a loose map on the wire for backward compatibility;
// apply-time code decodes it into typed payload structs (see payload.go).
type Event struct {
	SchemaVersion string         `json:"schema_version"`
	EventID       string         `json:"event_id"`
	EventSeq      int64          `json:"event_seq"`
	TS            string         `json:"ts"`
	Actor         string         `json:"actor"`
	Action        string         `json:"action"`
	Payload       map[string]any `json:"payload"`
}

// NewEvent composes a canonical v0.4 event at the given sequence position.
func NewEvent(seq int64, ts, actor, action string, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		SchemaVersion: SchemaVersion,
		EventID:       EventID(seq),
		EventSeq:      seq,
		TS:            ts,
		Actor:         actor,
		Action:        action,
		Payload:       payload,
	}
}

// EventID formats the canonical event id for a sequence position.
func EventID(seq int64) string {
	return fmt.Sprintf("EV-%08d", seq)
}

// LegacyEventID formats the synthesized id for legacy events that were
// appended before event ids existed.
func LegacyEventID(seq int64) string {
	return fmt.Sprintf("LEGACY-EV-%08d", seq)
}

// MarshalLine renders the event as one compact JSON log line, without
// the trailing newline. HTML escaping is disabled so the line matches
// the wire format byte-for-byte.
func (e Event) MarshalLine() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(e); err != nil {
		return nil, fmt.Errorf("marshal event %s: %w", e.EventID, err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
