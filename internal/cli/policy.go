package cli

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"enginectl/internal/config"
	"enginectl/internal/hardware"
	"enginectl/internal/policy"
)

func newPolicyCmd(opts *options) *cobra.Command {
	var computeCap string
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Print the resolved quantization policy for the probed (or given) architecture",
		Example: "  enginectl policy --mode base\n" +
			"  enginectl policy --mode base --compute-cap 9.0",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts.logLevel)
			mode := opts.mode
			if mode == "" {
				mode = config.ModeCompact
			}
			var arch hardware.Arch
			if computeCap != "" {
				arch = hardware.FromCode(computeCap, "")
			} else {
				arch = hardware.Probe(cmd.Context(), log)
			}
			pol, err := policy.Resolve(arch, mode)
			if err != nil {
				return err
			}
			out := struct {
				ComputeCap     string `json:"compute_cap"`
				Family         string `json:"family"`
				Mode           string `json:"mode"`
				WeightFormat   string `json:"weight_format"`
				KVCacheDtype   string `json:"kv_cache_dtype"`
				AttnBackend    string `json:"attn_backend"`
				MaxBatchTokens int    `json:"max_batch_tokens"`
				MaxNumSeqs     int    `json:"max_num_seqs"`
				Quantized      bool   `json:"quantized"`
			}{
				ComputeCap:     arch.Code,
				Family:         arch.Family.String(),
				Mode:           mode,
				WeightFormat:   pol.WeightFormat,
				KVCacheDtype:   pol.KVCacheDtype,
				AttnBackend:    pol.AttnBackend,
				MaxBatchTokens: pol.MaxBatchTokens,
				MaxNumSeqs:     pol.MaxNumSeqs,
				Quantized:      pol.Quantized,
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&computeCap, "compute-cap", "", "Resolve for this compute capability instead of probing")
	return cmd
}
