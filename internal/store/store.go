package store

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/esaa/internal/model"
)

// EnsureExists creates the event store file (and .roadmap/) if absent.
// Idempotent; safe to call before every operation.
func EnsureExists(root string) (string, error) {
	path := filepath.Join(root, filepath.FromSlash(EventStorePath))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("ensure event store dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("ensure event store: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("ensure event store: %w", err)
	}
	return path, nil
}

// Truncate empties the event store file. Used by forced re-init only.
func Truncate(root string) error {
	path, err := EnsureExists(root)
	if err != nil {
		return err
	}
	return os.WriteFile(path, nil, 0o644)
}

// Parse reads and strictly validates the full event log. Blank lines
// are skipped. Every failure is store corruption, never a domain error.
func Parse(root string) ([]model.Event, error) {
	path, err := EnsureExists(root)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open event store: %w", err)
	}
	defer f.Close()

	var (
		events  []model.Event
		seenIDs = map[string]struct{}{}
		lastSeq int64
		lineNo  int
	)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var raw map[string]any
		dec := json.NewDecoder(strings.NewReader(line))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, model.Corruptf(model.CodeJSONLInvalid, "invalid JSON at line %d: %v", lineNo, err)
		}

		event := model.NormalizeLegacyEvent(raw)

		seq, ok := integerField(event, "event_seq")
		if !ok {
			return nil, model.Corruptf(model.CodeSeqInvalid, "event_seq missing/invalid at line %d", lineNo)
		}
		if seq != lastSeq+1 {
			return nil, model.Corruptf(model.CodeSeqNonMonotonic, "expected event_seq=%d, got %d", lastSeq+1, seq)
		}
		lastSeq = seq

		eventID, _ := event["event_id"].(string)
		if _, present := event["event_id"]; !present {
			eventID = model.LegacyEventID(seq)
			event["event_id"] = eventID
		}
		if _, dup := seenIDs[eventID]; dup {
			return nil, model.Corruptf(model.CodeEventIDDuplicate, "duplicate event_id %s", eventID)
		}
		seenIDs[eventID] = struct{}{}

		if missing := missingFields(event); len(missing) > 0 {
			return nil, model.Corruptf(model.CodeEventMissingFields, "missing fields: %s", strings.Join(missing, ", "))
		}

		action, _ := event["action"].(string)
		if !model.IsCanonicalAction(action) {
			return nil, model.Corruptf(model.CodeUnknownAction, "unknown action in event store: %s", action)
		}

		payload, _ := event["payload"].(map[string]any)
		events = append(events, model.Event{
			SchemaVersion: model.StringField(event, "schema_version"),
			EventID:       eventID,
			EventSeq:      seq,
			TS:            model.StringField(event, "ts"),
			Actor:         model.StringField(event, "actor"),
			Action:        action,
			Payload:       payload,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read event store: %w", err)
	}
	return events, nil
}

// Append writes the composed events to the log as one batch: the whole
// buffer goes down in a single write so a crash never leaves a partial
// batch behind.
func Append(root string, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	path, err := EnsureExists(root)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	for _, event := range events {
		line, err := event.MarshalLine()
		if err != nil {
			return err
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open event store for append: %w", err)
	}
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("append events: %w", err)
	}
	return f.Close()
}

// NextSeq returns the sequence position the next event must take.
func NextSeq(events []model.Event) int64 {
	if len(events) == 0 {
		return 1
	}
	return events[len(events)-1].EventSeq + 1
}

var requiredEventFields = []string{
	"schema_version", "event_id", "event_seq", "ts", "actor", "action", "payload",
}

func missingFields(event map[string]any) []string {
	var missing []string
	for _, field := range requiredEventFields {
		if _, ok := event[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// integerField extracts a strict integer (no fraction, no exponent).
func integerField(m map[string]any, key string) (int64, bool) {
	num, ok := m[key].(json.Number)
	if !ok {
		return 0, false
	}
	if strings.ContainsAny(num.String(), ".eE") {
		return 0, false
	}
	v, err := num.Int64()
	if err != nil {
		return 0, false
	}
	return v, true
}
