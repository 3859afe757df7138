package config

import (
	"sort"
	"strconv"
)

// Precision modes a deployment may request.
const (
	ModeCompact = "compact"
	ModeBase    = "base"
)

// Tracked parameter names. The set is fixed: adding a name here changes the
// signature of every existing deployment, which forces one rebuild.
const (
	ParamModelID        = "model_id"
	ParamMode           = "mode"
	ParamEngineKind     = "engine_kind"
	ParamCheckpointDir  = "checkpoint_dir"
	ParamEngineDir      = "engine_dir"
	ParamMaxBatchTokens = "max_batch_tokens"
	ParamMaxNumSeqs     = "max_num_seqs"
	ParamKVCacheDtype   = "kv_cache_dtype"
	ParamTensorParallel = "tensor_parallel"
	ParamChunkedPrefill = "chunked_prefill"
	ParamPagedKV        = "paged_kv"
)

// TrackedNames lists every tracked parameter in lexical order.
var TrackedNames = []string{
	ParamCheckpointDir,
	ParamChunkedPrefill,
	ParamEngineDir,
	ParamEngineKind,
	ParamKVCacheDtype,
	ParamMaxBatchTokens,
	ParamMaxNumSeqs,
	ParamMode,
	ParamModelID,
	ParamPagedKV,
	ParamTensorParallel,
}

// Snapshot maps every tracked parameter to its value at capture time.
// A missing value is the empty string, never an absent key.
type Snapshot struct {
	values map[string]string
}

// Capture reads the current value of every tracked parameter from cfg.
func Capture(cfg Config) Snapshot {
	return Snapshot{values: map[string]string{
		ParamModelID:        cfg.ModelID,
		ParamMode:           cfg.Mode,
		ParamEngineKind:     cfg.EngineKind,
		ParamCheckpointDir:  cfg.CheckpointDir,
		ParamEngineDir:      cfg.EngineDir,
		ParamMaxBatchTokens: strconv.Itoa(cfg.MaxBatchTokens),
		ParamMaxNumSeqs:     strconv.Itoa(cfg.MaxNumSeqs),
		ParamKVCacheDtype:   cfg.KVCacheDtype,
		ParamTensorParallel: strconv.Itoa(cfg.TensorParallel),
		ParamChunkedPrefill: strconv.FormatBool(cfg.ChunkedPrefill),
		ParamPagedKV:        strconv.FormatBool(cfg.PagedKV),
	}}
}

// FromValues builds a snapshot from raw values. Names outside the tracked set
// are dropped; tracked names missing from m are kept as empty strings.
func FromValues(m map[string]string) Snapshot {
	v := make(map[string]string, len(TrackedNames))
	for _, name := range TrackedNames {
		v[name] = m[name]
	}
	return Snapshot{values: v}
}

// Get returns the captured value for name, or "" for unknown names.
func (s Snapshot) Get(name string) string { return s.values[name] }

// Names returns the tracked parameter names in lexical order.
func (s Snapshot) Names() []string {
	out := make([]string, 0, len(s.values))
	for name := range s.values {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
