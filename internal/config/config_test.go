package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestLoadYAML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.yaml", "model_id: llama8b\nmode: base\nengine_kind: trtllm\nmodel_dir: /m/src\nmax_batch_tokens: 4096\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelID != "llama8b" || cfg.Mode != "base" || cfg.EngineKind != "trtllm" || cfg.ModelDir != "/m/src" || cfg.MaxBatchTokens != 4096 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadJSON(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.json", `{"model_id":"m1","mode":"compact","tensor_parallel":2,"paged_kv":true}`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelID != "m1" || cfg.Mode != "compact" || cfg.TensorParallel != 2 || !cfg.PagedKV {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadTOML(t *testing.T) {
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.toml", "model_id=\"m2\"\nmode=\"base\"\nmin_engine_mb=64\n")
	cfg, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ModelID != "m2" || cfg.Mode != "base" || cfg.MinEngineMB != 64 {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error on empty path")
	}
	d := t.TempDir()
	p := writeTempFile(t, d, "cfg.txt", "not supported")
	if _, err := Load(p); err == nil {
		t.Fatalf("expected unsupported extension error")
	}
}

func TestApplyDefaultsDerivesLayout(t *testing.T) {
	cfg := Config{ModelID: "m", ModelDir: "/srv/models/llama8b"}
	cfg.ApplyDefaults()
	if cfg.Mode != ModeCompact {
		t.Fatalf("default mode: %q", cfg.Mode)
	}
	if cfg.CheckpointDir != "/srv/models/checkpoints/compact" {
		t.Fatalf("checkpoint dir: %q", cfg.CheckpointDir)
	}
	if cfg.EngineDir != "/srv/models/engines/compact" {
		t.Fatalf("engine dir: %q", cfg.EngineDir)
	}
	if cfg.RecordPath != "/srv/models/engines/build_record.txt" {
		t.Fatalf("record path: %q", cfg.RecordPath)
	}
}

func TestValidateNamesMissingParam(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil || !IsConfigError(err) {
		t.Fatalf("expected config error, got %v", err)
	}
	if got := err.Error(); got != "required parameter unset: model_id" {
		t.Fatalf("error should name the parameter: %q", got)
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	cfg := Config{ModelID: "m", ModelDir: "/m", Mode: "turbo"}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err == nil || !IsConfigError(err) {
		t.Fatalf("expected config error for bad mode, got %v", err)
	}
}

func TestApplyEnvOverlay(t *testing.T) {
	t.Setenv("ENGINECTL_MODE", "base")
	t.Setenv("ENGINECTL_MAX_NUM_SEQS", "128")
	t.Setenv("ENGINECTL_PAGED_KV", "true")
	cfg := Config{Mode: "compact"}
	cfg.ApplyEnv()
	if cfg.Mode != "base" || cfg.MaxNumSeqs != 128 || !cfg.PagedKV {
		t.Fatalf("env overlay not applied: %+v", cfg)
	}
}

func TestTrackedNamesLexicalOrder(t *testing.T) {
	if !sort.StringsAreSorted(TrackedNames) {
		t.Fatalf("tracked names out of lexical order: %v", TrackedNames)
	}
}

func TestCaptureCoversEveryTrackedName(t *testing.T) {
	snap := Capture(Config{ModelID: "m", Mode: "compact"})
	names := snap.Names()
	if len(names) != len(TrackedNames) {
		t.Fatalf("captured %d names, want %d", len(names), len(TrackedNames))
	}
	for i, n := range names {
		if n != TrackedNames[i] {
			t.Fatalf("name order mismatch at %d: %q vs %q", i, n, TrackedNames[i])
		}
	}
	if snap.Get(ParamKVCacheDtype) != "" {
		t.Fatalf("unset parameter should capture as empty string")
	}
}
