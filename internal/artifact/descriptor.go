package artifact

import (
	"path/filepath"

	"enginectl/pkg/types"
)

// Well-known file names inside an artifact directory.
const (
	ManifestFile        = "manifest.json"
	EngineBinaryFile    = "rank0.engine"
	EngineConfigFile    = "config.json"
	CheckpointWeights   = "model.safetensors"
	CheckpointConfig    = "config.json"
	checkpointTokenizer = "tokenizer.json"
)

// Descriptor names a candidate artifact directory and what a valid instance
// of it must contain. Descriptors outlive invocations; they are the cache
// payload, and the build record is the validity token.
type Descriptor struct {
	Dir             string
	Kind            types.ArtifactKind
	PrimaryFile     string
	RequiredFiles   []string
	MinPrimaryBytes int64
}

// Engine describes a compiled engine directory. minMB bounds the primary
// binary size check; compiled engines below it are suspect.
func Engine(dir string, minMB int) Descriptor {
	return Descriptor{
		Dir:             dir,
		Kind:            types.ArtifactEngine,
		PrimaryFile:     EngineBinaryFile,
		RequiredFiles:   []string{EngineBinaryFile, EngineConfigFile},
		MinPrimaryBytes: int64(minMB) * 1024 * 1024,
	}
}

// Checkpoint describes a quantized checkpoint directory. Checkpoints are
// portable across architectures, so no compatibility metadata is required.
func Checkpoint(dir string) Descriptor {
	return Descriptor{
		Dir:           dir,
		Kind:          types.ArtifactCheckpoint,
		PrimaryFile:   CheckpointWeights,
		RequiredFiles: []string{CheckpointWeights, CheckpointConfig},
	}
}

// PrimaryPath is the absolute path of the primary file.
func (d Descriptor) PrimaryPath() string { return filepath.Join(d.Dir, d.PrimaryFile) }
