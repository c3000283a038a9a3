// Package store provides durable storage for the ESAA event log and the
// derived view files.
//
// The event log is an append-only JSONL file: one compact JSON event per
// line, `event_seq` strictly monotonic from 1 with no gaps. The log is
// the single source of truth; roadmap.json, issues.json and lessons.json
// are derived caches rewritten whole on every projection, so corruption
// of a view never corrupts the log.
//
// Parse is strict: any malformed line, sequence gap, duplicate id,
// missing field or unknown action is classified as store corruption
// (model.CorruptError), a strictly stronger class than domain errors.
package store
