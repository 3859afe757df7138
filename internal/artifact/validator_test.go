package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"enginectl/internal/hardware"
)

func writeFile(t *testing.T, dir, name string, size int) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), make([]byte, size), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func engineDir(t *testing.T, name string, manifest *Manifest) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), name)
	writeFile(t, dir, EngineBinaryFile, 2048)
	writeFile(t, dir, EngineConfigFile, 16)
	if manifest != nil {
		if err := WriteManifest(dir, *manifest); err != nil {
			t.Fatalf("manifest: %v", err)
		}
	}
	return dir
}

func TestValidateMissingPrimaryFailsClosed(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "eng")
	writeFile(t, dir, EngineConfigFile, 16) // manifest-ish config only, no binary
	_, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err == nil || !IsMissing(err) {
		t.Fatalf("expected missing-file error, got %v", err)
	}
}

func TestValidateSizeBelowMinimumIsWarning(t *testing.T) {
	dir := engineDir(t, "eng", &Manifest{ComputeCap: "8.9"})
	res, err := Validate(Engine(dir, 1), hardware.FromCode("8.9", "")) // 1 MB min, file is 2 KB
	if err != nil {
		t.Fatalf("size shortfall must not be fatal: %v", err)
	}
	if res.Warning == "" {
		t.Fatalf("expected a size warning")
	}
}

func TestValidateManifestArchMismatchFailsClosed(t *testing.T) {
	dir := engineDir(t, "eng", &Manifest{ComputeCap: "9.0"})
	_, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err == nil || !IsIncompatible(err) {
		t.Fatalf("expected incompatibility error, got %v", err)
	}
}

func TestValidateManifestArchMatchPasses(t *testing.T) {
	dir := engineDir(t, "eng", &Manifest{ComputeCap: "8.9"})
	res, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.HeuristicOnly {
		t.Fatalf("manifest check should not be flagged heuristic-only")
	}
}

func TestValidateHeuristicMismatchFailsClosed(t *testing.T) {
	dir := engineDir(t, "sm90_llama8b", nil)
	_, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err == nil || !IsIncompatible(err) {
		t.Fatalf("expected heuristic incompatibility, got %v", err)
	}
}

func TestValidateHeuristicMatchFlagsHeuristicOnly(t *testing.T) {
	dir := engineDir(t, "sm89_llama8b", nil)
	res, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.HeuristicOnly {
		t.Fatalf("pass without metadata must surface the heuristic-only flag")
	}
}

func TestValidateNoHeuristicInfoPassesFlagged(t *testing.T) {
	dir := engineDir(t, "llama8b", nil)
	res, err := Validate(Engine(dir, 0), hardware.FromCode("8.9", ""))
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !res.HeuristicOnly {
		t.Fatalf("unverifiable compatibility must be flagged")
	}
}

func TestValidateCheckpointSkipsArchCheck(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sm90_ckpt")
	writeFile(t, dir, CheckpointWeights, 1024)
	writeFile(t, dir, CheckpointConfig, 16)
	if _, err := Validate(Checkpoint(dir), hardware.FromCode("8.9", "")); err != nil {
		t.Fatalf("checkpoints are portable, got %v", err)
	}
}

func TestManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	in := Manifest{ComputeCap: "9.0", Precision: "base", Quantization: "fp8", EngineKind: "trtllm", RunID: "r1"}
	if err := WriteManifest(dir, in); err != nil {
		t.Fatalf("write: %v", err)
	}
	m, err := ReadManifest(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if m == nil || m.ComputeCap != "9.0" || m.Quantization != "fp8" || m.CreatedAt == "" {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}

func TestReadManifestAbsent(t *testing.T) {
	m, err := ReadManifest(t.TempDir())
	if err != nil || m != nil {
		t.Fatalf("absent manifest should be (nil, nil), got %v %v", m, err)
	}
}
