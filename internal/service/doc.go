// Package service is the orchestrator core. It owns the only write
// path to the event store: every operation parses the full log, folds
// it, composes new events, tentatively re-materializes to prove the
// batch is valid, and only then appends and rewrites the derived views.
//
// Single-writer by construction: operations never mutate state they
// did not re-derive from the log in the same call.
package service
