// Package projector folds the event log into the roadmap, issues and
// lessons views.
//
// Materialize is a pure function: no I/O, no retained state, and
// re-application to the same events is byte-identical (timestamps come
// from the events themselves). Workflow invariants are enforced at
// apply time, so a proposed event batch can be checked by tentatively
// re-materializing before anything is persisted.
//
// Determinism contract: map iteration order never leaks into the
// outputs. Indexes are emitted with sorted keys, the issues list is
// sorted by issue_id, and lessons preserve insertion order. Those are
// the only orderings, and all of them are explicit.
package projector
