// Package contract loads the declarative inputs that gate agent output:
// the agent contract (allowed actions, forbidden event fields, write
// boundaries) and the agent result schema.
//
// The contract is YAML on disk. Loading validates its structure against
// an embedded CUE definition before any field is trusted, so a mangled
// contract fails loudly at load time instead of silently admitting
// events. The result schema is standard JSON Schema (2020-12) compiled
// once per load.
//
// Both documents are read-only inputs; init seeds embedded defaults
// into .roadmap/ when they are absent and never overwrites them.
package contract
