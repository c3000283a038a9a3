package contract

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/roach88/esaa/internal/store"
)

//go:embed contract_schema.cue
var contractSchemaCUE string

// Load reads and structurally validates .roadmap/AGENT_CONTRACT.yaml.
func Load(root string) (*Contract, error) {
	path := filepath.Join(root, filepath.FromSlash(store.AgentContractPath))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent contract: %w", err)
	}

	var loose map[string]any
	if err := yaml.Unmarshal(raw, &loose); err != nil {
		return nil, fmt.Errorf("decode agent contract: %w", err)
	}
	if err := validateShape(loose); err != nil {
		return nil, fmt.Errorf("agent contract %s: %w", path, err)
	}

	var c Contract
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode agent contract: %w", err)
	}
	return &c, nil
}

// validateShape unifies the decoded document with the embedded CUE
// definition and requires every field to be concrete and conforming.
func validateShape(doc map[string]any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(contractSchemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile contract schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Contract"))
	if err := def.Err(); err != nil {
		return fmt.Errorf("lookup #Contract: %w", err)
	}
	unified := def.Unify(ctx.Encode(doc))
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("contract does not conform to schema: %w", err)
	}
	return nil
}

// LoadResultSchema compiles .roadmap/agent_result.schema.json.
func LoadResultSchema(root string) (*jsonschema.Schema, error) {
	path := filepath.Join(root, filepath.FromSlash(store.AgentResultSchemaPath))
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agent result schema: %w", err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode agent result schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("agent_result.schema.json", doc); err != nil {
		return nil, fmt.Errorf("register agent result schema: %w", err)
	}
	schema, err := compiler.Compile("agent_result.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile agent result schema: %w", err)
	}
	return schema, nil
}
