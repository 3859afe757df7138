package cli

import (
	"github.com/spf13/cobra"

	"enginectl/internal/hardware"
	"enginectl/internal/pipeline"
)

func newBuildCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the quantize/compile pipeline, reusing cached or remote artifacts where possible",
		Example: "  enginectl build -c deploy.yaml\n" +
			"  enginectl build --model-id llama8b --model-dir ~/models/llama8b --mode base\n" +
			"  enginectl build -c deploy.yaml --remote http://artifactd:8080 --push",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts.logLevel)
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			arch := hardware.Probe(cmd.Context(), log)
			p := &pipeline.Pipeline{
				Cfg:   cfg,
				Arch:  arch,
				Store: buildStore(cfg),
				Force: opts.force,
				Push:  opts.push,
				Log:   log,
			}
			out, err := p.Run(cmd.Context())
			if err != nil {
				return err
			}
			ev := log.Info().
				Str("run_id", out.RunID).
				Bool("cache_hit", out.CacheHit).
				Bool("remote_engine", out.RemoteEngine).
				Bool("remote_checkpoint", out.RemoteCheckpoint).
				Bool("quantized", out.QuantizeRan).
				Bool("compiled", out.CompileRan)
			if out.Pushed {
				ev = ev.Bool("pushed", true)
			}
			ev.Msg("pipeline done")
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.force, "force", false, "Rebuild even when the record and artifact are intact")
	cmd.Flags().BoolVar(&opts.push, "push", false, "Upload freshly built artifacts to the remote store")
	return cmd
}
