package policy

import (
	"fmt"

	"enginectl/internal/config"
	"enginectl/internal/hardware"
)

// Weight and KV-cache formats the resolver can select.
const (
	FormatAWQInt4 = "awq-int4"
	FormatFP8     = "fp8"
	FormatFP16    = "fp16"

	KVInt8 = "int8"
	KVFP8  = "fp8"
	KVAuto = "auto" // model's native dtype, no quantization applied
)

// Attention backends keyed from the tuning table.
const (
	AttnFlashInfer = "flashinfer"
	AttnFlash      = "flash-attn"
	AttnFallback   = "xformers"
)

// Policy is the resolved quantization tuple for one architecture and one
// requested precision mode. It is a pure function of its inputs.
type Policy struct {
	WeightFormat   string
	KVCacheDtype   string
	AttnBackend    string
	MaxBatchTokens int
	MaxNumSeqs     int
	// Quantized is false when the policy is an explicit fp16 passthrough,
	// in which case the quantize step is skipped entirely.
	Quantized bool
}

type tuneKey struct {
	family hardware.Family
	format string
}

type tuning struct {
	attn           string
	maxBatchTokens int
	maxNumSeqs     int
}

// tuningTable maps (family, weight format) to attention backend and batching
// caps. Families absent from the table fall back to conservativeTuning.
var tuningTable = map[tuneKey]tuning{
	{hardware.FamilyAmpere, FormatAWQInt4}:    {AttnFlash, 8192, 64},
	{hardware.FamilyAmpere, FormatFP16}:       {AttnFlash, 8192, 64},
	{hardware.FamilyAda, FormatAWQInt4}:       {AttnFlash, 16384, 128},
	{hardware.FamilyAda, FormatFP8}:           {AttnFlash, 16384, 128},
	{hardware.FamilyHopper, FormatAWQInt4}:    {AttnFlashInfer, 32768, 256},
	{hardware.FamilyHopper, FormatFP8}:        {AttnFlashInfer, 32768, 256},
	{hardware.FamilyBlackwell, FormatAWQInt4}: {AttnFlashInfer, 32768, 256},
	{hardware.FamilyBlackwell, FormatFP8}:     {AttnFlashInfer, 32768, 256},
}

var conservativeTuning = tuning{AttnFallback, 4096, 32}

// Resolve maps an architecture and requested precision mode to a concrete
// policy. No I/O, no clock: the result depends only on the arguments.
//
// compact always selects low-bit AWQ weights with an int8 KV cache,
// independent of architecture. base selects fp8 weights and KV on
// architectures with native fp8, and an explicit fp16 passthrough elsewhere.
// An undetected architecture resolves the conservative fp16 row.
func Resolve(arch hardware.Arch, mode string) (Policy, error) {
	var p Policy
	switch mode {
	case config.ModeCompact:
		p = Policy{WeightFormat: FormatAWQInt4, KVCacheDtype: KVInt8, Quantized: true}
	case config.ModeBase:
		if arch.FP8Native {
			p = Policy{WeightFormat: FormatFP8, KVCacheDtype: KVFP8, Quantized: true}
		} else {
			p = Policy{WeightFormat: FormatFP16, KVCacheDtype: KVAuto, Quantized: false}
		}
	default:
		return Policy{}, fmt.Errorf("unknown precision mode: %q", mode)
	}
	t, ok := tuningTable[tuneKey{arch.Family, p.WeightFormat}]
	if !ok {
		t = conservativeTuning
	}
	p.AttnBackend = t.attn
	p.MaxBatchTokens = t.maxBatchTokens
	p.MaxNumSeqs = t.maxNumSeqs
	return p, nil
}
