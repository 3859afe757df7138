package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Execute runs the enginectl command tree.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err.Error())
		os.Exit(1)
	}
}

// options carries flag values shared across subcommands. Flags beat env vars
// beat the config file.
type options struct {
	configPath string
	logLevel   string

	modelID    string
	mode       string
	engineKind string
	modelDir   string

	remoteURL    string
	remotePrefix string
	remoteLabel  string
	preference   string

	force bool
	push  bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "enginectl",
		Short:         "Build cache and artifact pipeline for GPU inference engines",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml/.json/.toml)")
	root.PersistentFlags().String("log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&opts.modelID, "model-id", "", "Model identifier")
	root.PersistentFlags().StringVar(&opts.mode, "mode", "", "Precision mode: compact|base")
	root.PersistentFlags().StringVar(&opts.engineKind, "engine-kind", "", "Compiler/runtime family")
	root.PersistentFlags().StringVar(&opts.modelDir, "model-dir", "", "Source model directory")
	root.PersistentFlags().StringVar(&opts.remoteURL, "remote", "", "Remote store: http(s) URL or directory path")
	root.PersistentFlags().StringVar(&opts.remotePrefix, "remote-prefix", "", "Store prefix (defaults to the model id)")
	root.PersistentFlags().StringVar(&opts.remoteLabel, "remote-label", "", "Pin an engine label in the store")
	root.PersistentFlags().StringVar(&opts.preference, "preference", "", "Remote preference: auto|engines-only|checkpoints-only")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if f := cmd.InheritedFlags().Lookup("log-level"); f != nil {
			opts.logLevel = f.Value.String()
		} else if f := cmd.Flags().Lookup("log-level"); f != nil {
			opts.logLevel = f.Value.String()
		}
	}

	root.AddCommand(newBuildCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newPolicyCmd(opts))
	root.AddCommand(newWipeCmd(opts))
	return root
}

// newLogger builds the console logger every subcommand shares.
func newLogger(level string) zerolog.Logger {
	lvl := zerolog.InfoLevel
	switch strings.ToLower(level) {
	case "debug":
		lvl = zerolog.DebugLevel
	case "warn", "warning":
		lvl = zerolog.WarnLevel
	case "error", "err":
		lvl = zerolog.ErrorLevel
	}
	w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}
