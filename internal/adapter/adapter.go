package adapter

import (
	"github.com/roach88/esaa/internal/workflow"
)

// Adapter executes one task dispatch and returns the agent's raw
// result. The result is untrusted: the orchestrator validates it
// against the contract before any event or file write happens.
type Adapter interface {
	// AgentID is the actor recorded on events this adapter produces.
	AgentID() string

	// Execute runs one dispatch. The returned map must decode against
	// the agent result schema; a non-nil error means the agent itself
	// failed to produce parseable output.
	Execute(ctx *workflow.DispatchContext) (map[string]any, error)

	// Health reports adapter liveness.
	Health() map[string]string
}
