package signature

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"enginectl/internal/config"
)

// paramPrefix namespaces tracked parameters inside the record file so the
// format can grow top-level keys without colliding with parameter names.
const paramPrefix = "build."

// Record is the on-disk trace of the last successful build. It is written
// only after validation succeeds and is a read-only input to the next run.
type Record struct {
	Params    map[string]string
	Signature string
	Timestamp time.Time
	RunID     string
}

// Snapshot rebuilds a tracked snapshot from the recorded parameter values.
func (r *Record) Snapshot() config.Snapshot { return config.FromValues(r.Params) }

// Write persists snap and its signature at path, creating parent directories
// as needed. The file is written to a temp name and renamed so readers never
// observe a partial record.
func Write(path string, snap config.Snapshot, sig, runID string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("record dir: %w", err)
	}
	var b strings.Builder
	for _, name := range snap.Names() {
		fmt.Fprintf(&b, "%s%s=%s\n", paramPrefix, name, snap.Get(name))
	}
	fmt.Fprintf(&b, "signature=%s\n", sig)
	fmt.Fprintf(&b, "timestamp=%s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "run_id=%s\n", runID)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace record: %w", err)
	}
	return nil
}

// Load parses a record file. A missing file returns os.ErrNotExist via the
// underlying read. Unknown keys are ignored; a missing or garbled signature
// line degrades to Sentinel rather than failing, which keeps comparison
// conservative (never equal) instead of trusting an unverifiable record.
func Load(path string) (*Record, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rec := &Record{Params: make(map[string]string), Signature: Sentinel}
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch {
		case strings.HasPrefix(key, paramPrefix):
			rec.Params[strings.TrimPrefix(key, paramPrefix)] = val
		case key == "signature":
			if val != "" {
				rec.Signature = val
			}
		case key == "timestamp":
			if ts, err := time.Parse(time.RFC3339, val); err == nil {
				rec.Timestamp = ts
			}
		case key == "run_id":
			rec.RunID = val
		}
	}
	if len(rec.Params) == 0 && rec.Signature == Sentinel {
		return nil, fmt.Errorf("record %s: no recognizable keys", path)
	}
	return rec, nil
}

// Diff returns the tracked names whose current value differs from the
// recorded one, in lexical order.
func (r *Record) Diff(snap config.Snapshot) []string {
	var changed []string
	for _, name := range snap.Names() {
		if snap.Get(name) != r.Params[name] {
			changed = append(changed, name)
		}
	}
	sort.Strings(changed)
	return changed
}
