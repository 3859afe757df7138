package pipeline

import (
	"context"
	"strconv"

	"enginectl/internal/policy"
)

// runQuantizer invokes the external quantizer with the resolved policy
// fields as discrete arguments. Contract: exit success plus expected output
// files present, checked afterwards by the validator.
func (p *Pipeline) runQuantizer(ctx context.Context, pol policy.Policy) error {
	args := []string{
		"--model", p.Cfg.ModelDir,
		"--output", p.Cfg.CheckpointDir,
		"--format", pol.WeightFormat,
		"--kv-cache-dtype", pol.KVCacheDtype,
	}
	p.Log.Info().Str("format", pol.WeightFormat).Str("output", p.Cfg.CheckpointDir).Msg("quantizing")
	return RunCmd(ctx, p.Log, Cmd{Path: p.Cfg.QuantizerBin, Args: args})
}

// runCompiler invokes the external engine compiler on inputDir (a quantized
// checkpoint, or the source model for an fp16 passthrough).
func (p *Pipeline) runCompiler(ctx context.Context, pol policy.Policy, inputDir string) error {
	args := []string{
		"--checkpoint", inputDir,
		"--output", p.Cfg.EngineDir,
		"--attn-backend", pol.AttnBackend,
		"--max-batch-tokens", strconv.Itoa(clamp(p.Cfg.MaxBatchTokens, pol.MaxBatchTokens)),
		"--max-num-seqs", strconv.Itoa(clamp(p.Cfg.MaxNumSeqs, pol.MaxNumSeqs)),
		"--tensor-parallel", strconv.Itoa(p.Cfg.TensorParallel),
	}
	if p.Cfg.ChunkedPrefill {
		args = append(args, "--chunked-prefill")
	}
	if p.Cfg.PagedKV {
		args = append(args, "--paged-kv")
	}
	p.Log.Info().Str("input", inputDir).Str("output", p.Cfg.EngineDir).Msg("compiling engine")
	return RunCmd(ctx, p.Log, Cmd{Path: p.Cfg.CompilerBin, Args: args})
}

// clamp caps a configured limit at the policy ceiling for the architecture.
func clamp(want, ceiling int) int {
	if want <= 0 || want > ceiling {
		return ceiling
	}
	return want
}
