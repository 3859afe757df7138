package artifact

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"enginectl/internal/hardware"
	"enginectl/pkg/types"
)

// Result carries non-fatal findings from a validation pass.
type Result struct {
	// Warning is set when the primary binary is smaller than the configured
	// minimum. The caller may proceed but must log it loudly: size is a
	// heuristic, not proof of corruption.
	Warning string
	// HeuristicOnly is set when architecture compatibility could not be
	// confirmed from embedded metadata and rests on path naming alone.
	HeuristicOnly bool
}

// Validate checks a candidate artifact directory: required files, minimum
// primary size, then architecture compatibility. Checks run in order and
// short-circuit on the first failure. Compiled engines are
// architecture-specific; running an incompatible one crashes at serve time
// rather than erroring, so the compatibility check is a pre-flight gate.
func Validate(d Descriptor, arch hardware.Arch) (Result, error) {
	var res Result
	for _, name := range d.RequiredFiles {
		fi, err := os.Stat(filepath.Join(d.Dir, name))
		if err != nil || fi.IsDir() {
			return res, missingError{dir: d.Dir, file: name}
		}
	}
	if d.MinPrimaryBytes > 0 {
		if fi, err := os.Stat(d.PrimaryPath()); err == nil && fi.Size() < d.MinPrimaryBytes {
			res.Warning = fmt.Sprintf("%s is %d bytes, below the %d byte minimum",
				d.PrimaryPath(), fi.Size(), d.MinPrimaryBytes)
		}
	}
	if d.Kind == types.ArtifactEngine {
		if err := checkArch(d, arch, &res); err != nil {
			return res, err
		}
	}
	return res, nil
}

// checkArch applies the two-tier compatibility check: embedded manifest
// metadata first, path-naming heuristic second. Both tiers fail closed on a
// mismatch; the heuristic tier only ever passes with HeuristicOnly set.
func checkArch(d Descriptor, arch hardware.Arch, res *Result) error {
	m, err := ReadManifest(d.Dir)
	if err != nil {
		return fmt.Errorf("artifact %s: unreadable manifest: %w", d.Dir, err)
	}
	if m != nil && m.ComputeCap != "" {
		if arch.Detected() && m.ComputeCap != arch.Code {
			return incompatibleError{dir: d.Dir, built: m.ComputeCap, current: arch.Code, source: "manifest"}
		}
		return nil
	}
	res.HeuristicOnly = true
	if built, ok := smPrefix(d.Dir); ok && arch.Detected() {
		if built != smCode(arch.Code) {
			return incompatibleError{dir: d.Dir, built: built, current: smCode(arch.Code), source: "path heuristic"}
		}
	}
	return nil
}

// smPrefix extracts the "sm<code>_" prefix from the artifact directory name,
// e.g. engines/sm89_llama8b -> "89".
func smPrefix(dir string) (string, bool) {
	base := filepath.Base(dir)
	if !strings.HasPrefix(base, "sm") {
		return "", false
	}
	rest := strings.TrimPrefix(base, "sm")
	code, _, ok := strings.Cut(rest, "_")
	if !ok || code == "" {
		return "", false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return code, true
}

// smCode normalizes a compute capability to its sm form: "8.9" -> "89".
func smCode(cap string) string { return strings.ReplaceAll(cap, ".", "") }
