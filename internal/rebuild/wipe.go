package rebuild

import (
	"fmt"
	"os"

	"enginectl/internal/config"
	"enginectl/internal/signature"
)

// Wipe deletes all cached artifacts and the build record, covering both the
// current layout and the one named in the last record (which may point at a
// different kind's directories after a mode switch). Missing paths are not
// errors.
func Wipe(cfg config.Config) error {
	targets := map[string]struct{}{
		cfg.CheckpointDir: {},
		cfg.EngineDir:     {},
	}
	if rec, err := signature.Load(cfg.RecordPath); err == nil {
		if p := rec.Params[config.ParamCheckpointDir]; p != "" {
			targets[p] = struct{}{}
		}
		if p := rec.Params[config.ParamEngineDir]; p != "" {
			targets[p] = struct{}{}
		}
	}
	for dir := range targets {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("wipe %s: %w", dir, err)
		}
	}
	if err := os.Remove(cfg.RecordPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("wipe record: %w", err)
	}
	return nil
}
