package hardware

import (
	"context"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

// smiBin is the probe binary. Overridable for tests.
var smiBin = "nvidia-smi"

// Probe queries the first visible accelerator via nvidia-smi. Every failure
// path returns an undetected Arch instead of an error: a build host without
// a working probe still resolves the conservative policy row.
func Probe(ctx context.Context, log zerolog.Logger) Arch {
	bin, err := exec.LookPath(smiBin)
	if err != nil {
		log.Debug().Str("bin", smiBin).Msg("accelerator probe binary not found")
		return Arch{}
	}
	out, err := exec.CommandContext(ctx, bin,
		"--query-gpu=compute_cap,name", "--format=csv,noheader").Output()
	if err != nil {
		log.Warn().Err(err).Msg("accelerator probe failed")
		return Arch{}
	}
	a := parseSmiOutput(string(out))
	if !a.Detected() {
		log.Warn().Str("output", strings.TrimSpace(string(out))).Msg("accelerator probe output unparseable")
		return a
	}
	log.Info().
		Str("compute_cap", a.Code).
		Str("family", a.Family.String()).
		Str("device", a.DeviceName).
		Bool("fp8_native", a.FP8Native).
		Msg("accelerator detected")
	return a
}

// parseSmiOutput reads the first CSV line of `compute_cap, name`.
func parseSmiOutput(out string) Arch {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		code, name, _ := strings.Cut(line, ",")
		return FromCode(code, name)
	}
	return Arch{}
}
