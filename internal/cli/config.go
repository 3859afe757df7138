package cli

import (
	"strings"

	"enginectl/internal/common/fsutil"
	"enginectl/internal/config"
	"enginectl/internal/remote"
)

// loadConfig assembles the effective configuration: file, then env overlay,
// then flag overrides, then derived defaults.
func loadConfig(opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	if opts.modelID != "" {
		cfg.ModelID = opts.modelID
	}
	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	if opts.engineKind != "" {
		cfg.EngineKind = opts.engineKind
	}
	if opts.modelDir != "" {
		cfg.ModelDir = opts.modelDir
	}
	if opts.remoteURL != "" {
		cfg.RemoteURL = opts.remoteURL
	}
	if opts.remotePrefix != "" {
		cfg.RemotePrefix = opts.remotePrefix
	}
	if opts.remoteLabel != "" {
		cfg.RemoteLabel = opts.remoteLabel
	}
	if opts.preference != "" {
		cfg.Preference = opts.preference
	}

	for _, p := range []*string{&cfg.ModelDir, &cfg.CheckpointDir, &cfg.EngineDir, &cfg.RecordPath} {
		expanded, err := fsutil.ExpandHome(*p)
		if err != nil {
			return cfg, err
		}
		*p = expanded
	}
	cfg.ApplyDefaults()
	if cfg.RemotePrefix == "" {
		cfg.RemotePrefix = cfg.ModelID
	}
	return cfg, nil
}

// buildStore maps the remote reference onto a store implementation:
// an http(s) URL speaks the artifactd API, anything else is treated as a
// mounted directory. Empty means no remote is configured.
func buildStore(cfg config.Config) remote.Store {
	switch {
	case cfg.RemoteURL == "":
		return nil
	case strings.HasPrefix(cfg.RemoteURL, "http://"), strings.HasPrefix(cfg.RemoteURL, "https://"):
		return remote.NewHTTPStore(cfg.RemoteURL)
	default:
		return remote.NewFSStore(cfg.RemoteURL)
	}
}
