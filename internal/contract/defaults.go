package contract

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/esaa/internal/store"
)

//go:embed defaults/AGENT_CONTRACT.yaml defaults/agent_result.schema.json
var defaultsFS embed.FS

// WriteDefaults seeds the embedded default contract and result schema
// into .roadmap/ so a fresh root is immediately runnable. Existing
// files are never overwritten.
func WriteDefaults(root string) error {
	targets := map[string]string{
		"defaults/AGENT_CONTRACT.yaml":      store.AgentContractPath,
		"defaults/agent_result.schema.json": store.AgentResultSchemaPath,
	}
	for src, rel := range targets {
		dst := filepath.Join(root, filepath.FromSlash(rel))
		if _, err := os.Stat(dst); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("stat %s: %w", dst, err)
		}
		data, err := defaultsFS.ReadFile(src)
		if err != nil {
			return fmt.Errorf("read embedded %s: %w", src, err)
		}
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return fmt.Errorf("ensure %s: %w", filepath.Dir(dst), err)
		}
		if err := os.WriteFile(dst, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", dst, err)
		}
	}
	return nil
}
