// Package validator is the admission gate between agent output and the
// event store. Nothing an agent produces reaches the log or the working
// tree without passing through Validate: structural checks against the
// result schema, contract vocabulary and forbidden-field checks,
// workflow gates, and write-boundary enforcement on every file update.
package validator
