package policy

import (
	"testing"

	"enginectl/internal/config"
	"enginectl/internal/hardware"
)

func TestCompactIndependentOfArchitecture(t *testing.T) {
	codes := []string{"8.0", "8.9", "9.0", "10.0", ""}
	var formats []string
	for _, code := range codes {
		p, err := Resolve(hardware.FromCode(code, ""), config.ModeCompact)
		if err != nil {
			t.Fatalf("resolve %q: %v", code, err)
		}
		formats = append(formats, p.WeightFormat)
		if p.KVCacheDtype != KVInt8 {
			t.Fatalf("%q: kv dtype %q, want int8", code, p.KVCacheDtype)
		}
		if !p.Quantized {
			t.Fatalf("%q: compact must quantize", code)
		}
	}
	for _, f := range formats {
		if f != FormatAWQInt4 {
			t.Fatalf("compact weight format varies by architecture: %v", formats)
		}
	}
}

func TestBaseSelectsFP8AtThreshold(t *testing.T) {
	for _, code := range []string{"8.9", "9.0", "10.0"} {
		p, err := Resolve(hardware.FromCode(code, ""), config.ModeBase)
		if err != nil {
			t.Fatalf("resolve %q: %v", code, err)
		}
		if p.WeightFormat != FormatFP8 || p.KVCacheDtype != KVFP8 {
			t.Fatalf("%q: got %s/%s, want fp8/fp8", code, p.WeightFormat, p.KVCacheDtype)
		}
	}
}

func TestBaseBelowThresholdIsExplicitPassthrough(t *testing.T) {
	p, err := Resolve(hardware.FromCode("8.6", ""), config.ModeBase)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.WeightFormat != FormatFP16 || p.KVCacheDtype != KVAuto {
		t.Fatalf("got %s/%s, want fp16/auto", p.WeightFormat, p.KVCacheDtype)
	}
	if p.Quantized {
		t.Fatalf("fp16 passthrough must not be marked quantized")
	}
}

func TestUnknownArchitectureResolvesConservatively(t *testing.T) {
	p, err := Resolve(hardware.Arch{}, config.ModeBase)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.WeightFormat != FormatFP16 {
		t.Fatalf("unknown arch weight format: %q", p.WeightFormat)
	}
	if p.MaxBatchTokens != conservativeTuning.maxBatchTokens || p.AttnBackend != AttnFallback {
		t.Fatalf("unknown arch should use conservative tuning: %+v", p)
	}
}

func TestTuningVariesByFamily(t *testing.T) {
	hopper, _ := Resolve(hardware.FromCode("9.0", ""), config.ModeCompact)
	ampere, _ := Resolve(hardware.FromCode("8.0", ""), config.ModeCompact)
	if hopper.AttnBackend != AttnFlashInfer || ampere.AttnBackend != AttnFlash {
		t.Fatalf("attention backends: hopper=%s ampere=%s", hopper.AttnBackend, ampere.AttnBackend)
	}
	if hopper.MaxBatchTokens <= ampere.MaxBatchTokens {
		t.Fatalf("hopper should allow larger batches than ampere")
	}
}

func TestUnknownModeErrors(t *testing.T) {
	if _, err := Resolve(hardware.Arch{}, "turbo"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := hardware.FromCode("9.0", "H100")
	p1, _ := Resolve(a, config.ModeBase)
	p2, _ := Resolve(a, config.ModeBase)
	if p1 != p2 {
		t.Fatalf("resolve is not deterministic: %+v vs %+v", p1, p2)
	}
}
