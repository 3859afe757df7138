package artifact

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Manifest is the embedded metadata an artifact may carry. Every field is
// optional: artifacts produced by older tooling have no manifest at all, in
// which case compatibility falls back to the path heuristic.
type Manifest struct {
	// ComputeCap is the compute capability the artifact was built for,
	// e.g. "8.9". Empty for portable checkpoints.
	ComputeCap string `json:"compute_cap,omitempty"`
	// Precision is the requested mode the build resolved ("compact"/"base").
	Precision string `json:"precision,omitempty"`
	// Quantization is the concrete weight format ("awq-int4", "fp8", "fp16").
	Quantization string `json:"quantization,omitempty"`
	// EngineKind is the compiler/runtime family the artifact targets.
	EngineKind string `json:"engine_kind,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	RunID      string `json:"run_id,omitempty"`
}

// ReadManifest loads dir/manifest.json. A missing file returns (nil, nil):
// absence is a supported state, not an error.
func ReadManifest(dir string) (*Manifest, error) {
	b, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// WriteManifest stamps dir with build metadata.
func WriteManifest(dir string, m Manifest) error {
	if m.CreatedAt == "" {
		m.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, ManifestFile), b, 0o644)
}
