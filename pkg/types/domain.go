package types

// ArtifactKind distinguishes the two cache payloads a build produces.
type ArtifactKind string

const (
	// ArtifactCheckpoint is a portable quantized model representation,
	// not yet compiled for a specific accelerator.
	ArtifactCheckpoint ArtifactKind = "checkpoint"
	// ArtifactEngine is a compiled, architecture-specific artifact ready
	// to serve.
	ArtifactEngine ArtifactKind = "engine"
)

// Preference controls which remote artifact kinds the resolver may use.
type Preference string

const (
	PreferAuto        Preference = "auto"
	PreferEnginesOnly Preference = "engines-only"
	PreferCkptsOnly   Preference = "checkpoints-only"
)

// RemoteFile is one entry in a store listing.
type RemoteFile struct {
	// Path relative to the store root, forward-slash separated.
	Path string `json:"path"`
	// Size in bytes as reported by the store.
	SizeBytes int64 `json:"size_bytes"`
}
