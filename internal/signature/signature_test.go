package signature

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"enginectl/internal/config"
)

func snap(overrides map[string]string) config.Snapshot {
	base := map[string]string{
		config.ParamModelID:    "llama8b",
		config.ParamMode:       "compact",
		config.ParamEngineKind: "trtllm",
	}
	for k, v := range overrides {
		base[k] = v
	}
	return config.FromValues(base)
}

func TestSignDeterministic(t *testing.T) {
	s := snap(nil)
	if Sign(s) != Sign(s) {
		t.Fatalf("same snapshot signed twice gave different digests")
	}
}

func TestSignOrderIndependent(t *testing.T) {
	// FromValues ingests map iteration order, which Go randomizes; two
	// builds from the same values must still agree.
	a := config.FromValues(map[string]string{
		config.ParamMode: "base", config.ParamModelID: "m", config.ParamEngineKind: "trtllm",
	})
	b := config.FromValues(map[string]string{
		config.ParamEngineKind: "trtllm", config.ParamModelID: "m", config.ParamMode: "base",
	})
	if Sign(a) != Sign(b) {
		t.Fatalf("capture order leaked into the digest")
	}
}

func TestSignChangesWithValue(t *testing.T) {
	a := snap(nil)
	b := snap(map[string]string{config.ParamMode: "base"})
	if Sign(a) == Sign(b) {
		t.Fatalf("different values produced equal digests")
	}
}

func TestCanonicalSortedLines(t *testing.T) {
	c := Canonical(snap(nil))
	lines := strings.Split(c, "\n")
	if len(lines) != len(config.TrackedNames) {
		t.Fatalf("got %d lines, want %d", len(lines), len(config.TrackedNames))
	}
	for i, name := range config.TrackedNames {
		if !strings.HasPrefix(lines[i], name+"=") {
			t.Fatalf("line %d = %q, want prefix %q=", i, lines[i], name)
		}
	}
}

func TestRecordRoundTrip(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "nested", "build_record.txt")
	s := snap(nil)
	sig := Sign(s)
	if err := Write(p, s, sig, "run-1"); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Signature != sig || rec.RunID != "run-1" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if rec.Timestamp.IsZero() {
		t.Fatalf("timestamp not recorded")
	}
	if diff := rec.Diff(s); len(diff) != 0 {
		t.Fatalf("round-tripped record should diff clean, got %v", diff)
	}
	// No temp file left behind.
	if _, err := os.Stat(p + ".tmp"); err == nil {
		t.Fatalf("temp file not cleaned up")
	}
}

func TestRecordDiffNamesChangedKey(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "build_record.txt")
	s := snap(nil)
	if err := Write(p, s, Sign(s), "run-1"); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	diff := rec.Diff(snap(map[string]string{config.ParamMode: "base"}))
	if len(diff) != 1 || diff[0] != config.ParamMode {
		t.Fatalf("diff = %v, want [mode]", diff)
	}
}

func TestLoadMissingSignatureDegradesToSentinel(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "build_record.txt")
	content := "build.model_id=m\nbuild.mode=compact\ntimestamp=2026-01-02T03:04:05Z\n"
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	rec, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if rec.Signature != Sentinel {
		t.Fatalf("signature = %q, want sentinel", rec.Signature)
	}
	if Sign(snap(nil)) == rec.Signature {
		t.Fatalf("sentinel must never equal a computed digest")
	}
}

func TestLoadGarbageFails(t *testing.T) {
	d := t.TempDir()
	p := filepath.Join(d, "build_record.txt")
	if err := os.WriteFile(p, []byte("not a record at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(p); err == nil {
		t.Fatalf("expected parse failure for garbage record")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent")); !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}
