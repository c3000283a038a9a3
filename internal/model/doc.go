// Package model provides the foundational types for the ESAA core.
//
// This package contains the event shape, the canonical action set, the
// roadmap/issues/lessons view types, canonical JSON hashing, legacy
// event normalization, and the coded error types. All other internal
// packages import model; model imports nothing internal. This keeps it
// the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Event sequence numbers are int64 logical positions, 1..N, no gaps
//   - Timestamps are UTC ISO-8601 with a Z suffix at second precision,
//     carried as strings (they are wire data, not scheduling inputs)
//   - All JSON tags use snake_case
//   - Canonical JSON is the ONLY serialization used for the projection
//     hash: sorted keys, compact separators, no HTML escaping, single
//     trailing newline
package model
