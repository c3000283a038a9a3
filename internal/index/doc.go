// Package index maintains a queryable SQLite projection of the event
// log for trace tooling. It is strictly derived state: Rebuild drops
// and refills it from the parsed log, and nothing in the system reads
// it back into the projection. Deleting the database loses nothing.
package index
