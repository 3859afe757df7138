package cli

import (
	"github.com/spf13/cobra"

	"enginectl/internal/rebuild"
)

func newWipeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "wipe",
		Short: "Delete all cached artifacts and the build record",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts.logLevel)
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := rebuild.Wipe(cfg); err != nil {
				return err
			}
			log.Info().
				Str("checkpoint_dir", cfg.CheckpointDir).
				Str("engine_dir", cfg.EngineDir).
				Str("record", cfg.RecordPath).
				Msg("cache wiped")
			return nil
		},
	}
}
