// Package adapter defines the seam between the orchestrator and agent
// workers. The orchestrator hands an adapter one dispatch context and
// gets back a raw agent result; everything the result may do is checked
// downstream by the validator, so adapters are untrusted by design.
//
// Mock is the built-in deterministic adapter: it drives every task
// through claim, complete and approve, which is enough to run the whole
// lifecycle end to end without a live agent.
package adapter
