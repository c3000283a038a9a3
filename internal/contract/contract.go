package contract

import (
	"slices"

	"github.com/roach88/esaa/internal/model"
)

// Contract is the typed agent contract.
type Contract struct {
	SchemaVersion  string         `yaml:"schema_version"`
	Vocabulary     Vocabulary     `yaml:"vocabulary"`
	OutputContract OutputContract `yaml:"output_contract"`
	Boundaries     Boundaries     `yaml:"boundaries"`
}

// Vocabulary names the actions agents may emit.
type Vocabulary struct {
	AllowedAgentActions []string `yaml:"allowed_agent_actions"`
}

// OutputContract constrains the shape of submitted activity events.
type OutputContract struct {
	ActivityEvent ActivityEventContract `yaml:"activity_event"`
}

// ActivityEventContract lists fields agents must never set themselves
// (identity and ordering belong to the orchestrator).
type ActivityEventContract struct {
	ForbiddenFields []string `yaml:"forbidden_fields"`
}

// Boundaries gates which paths each task kind may write.
type Boundaries struct {
	PatchScope PatchScope                `yaml:"patch_scope"`
	ByTaskKind map[string]KindBoundaries `yaml:"by_task_kind"`
}

// PatchScope toggles the hotfix patch-scope feature.
type PatchScope struct {
	Enabled bool `yaml:"enabled"`
}

// KindBoundaries is the allow/deny glob set for one task kind.
type KindBoundaries struct {
	Read           []string `yaml:"read"`
	Write          []string `yaml:"write"`
	ForbiddenWrite []string `yaml:"forbidden_write"`
}

// AllowsAction reports whether the contract vocabulary admits action.
func (c *Contract) AllowsAction(action string) bool {
	return slices.Contains(c.Vocabulary.AllowedAgentActions, action)
}

// IsForbiddenField reports whether agents may not set field on an
// activity event.
func (c *Contract) IsForbiddenField(field string) bool {
	return slices.Contains(c.OutputContract.ActivityEvent.ForbiddenFields, field)
}

// KindBoundaries returns the boundary set for a task kind.
func (c *Contract) KindBoundaries(kind string) (KindBoundaries, error) {
	b, ok := c.Boundaries.ByTaskKind[kind]
	if !ok {
		return KindBoundaries{}, model.Newf(model.CodeSchemaInvalid, "contract has no boundaries for task kind %q", kind)
	}
	return b, nil
}
