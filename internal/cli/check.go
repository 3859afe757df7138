package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"enginectl/internal/config"
	"enginectl/internal/rebuild"
	"enginectl/internal/signature"
)

// checkReport is the machine-readable verdict printed by `enginectl check`.
type checkReport struct {
	Rebuild        bool     `json:"rebuild"`
	ChangedKeys    []string `json:"changed_keys"`
	ForcedFullWipe bool     `json:"forced_full_wipe"`
	Reason         string   `json:"reason,omitempty"`
	Signature      string   `json:"signature"`
}

func newCheckCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report the rebuild decision without acting on it",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts.logLevel)
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			snap := config.Capture(cfg)
			dec := (&rebuild.Engine{RecordPath: cfg.RecordPath, Log: log}).Decide(snap)
			rep := checkReport{
				Rebuild:        dec.Rebuild,
				ChangedKeys:    dec.ChangedKeys,
				ForcedFullWipe: dec.ForcedFullWipe,
				Reason:         dec.Reason,
				Signature:      signature.Sign(snap),
			}
			if rep.ChangedKeys == nil {
				rep.ChangedKeys = []string{}
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		},
	}
}
