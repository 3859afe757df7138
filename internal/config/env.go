package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overlays ENGINECTL_* environment variables onto cfg. File values
// lose to env, env loses to flags; the CLI applies flags afterwards.
func (c *Config) ApplyEnv() {
	envStr("ENGINECTL_MODEL_ID", &c.ModelID)
	envStr("ENGINECTL_MODE", &c.Mode)
	envStr("ENGINECTL_ENGINE_KIND", &c.EngineKind)
	envStr("ENGINECTL_MODEL_DIR", &c.ModelDir)
	envStr("ENGINECTL_CHECKPOINT_DIR", &c.CheckpointDir)
	envStr("ENGINECTL_ENGINE_DIR", &c.EngineDir)
	envStr("ENGINECTL_RECORD_PATH", &c.RecordPath)
	envStr("ENGINECTL_REMOTE_URL", &c.RemoteURL)
	envStr("ENGINECTL_REMOTE_PREFIX", &c.RemotePrefix)
	envStr("ENGINECTL_REMOTE_LABEL", &c.RemoteLabel)
	envStr("ENGINECTL_PREFERENCE", &c.Preference)
	envStr("ENGINECTL_QUANTIZER_BIN", &c.QuantizerBin)
	envStr("ENGINECTL_COMPILER_BIN", &c.CompilerBin)
	envStr("ENGINECTL_KV_CACHE_DTYPE", &c.KVCacheDtype)
	envInt("ENGINECTL_MAX_BATCH_TOKENS", &c.MaxBatchTokens)
	envInt("ENGINECTL_MAX_NUM_SEQS", &c.MaxNumSeqs)
	envInt("ENGINECTL_TENSOR_PARALLEL", &c.TensorParallel)
	envInt("ENGINECTL_MIN_ENGINE_MB", &c.MinEngineMB)
	envBool("ENGINECTL_CHUNKED_PREFILL", &c.ChunkedPrefill)
	envBool("ENGINECTL_PAGED_KV", &c.PagedKV)
}

func envStr(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		s := strings.ToLower(v)
		*dst = s == "1" || s == "true" || s == "yes"
	}
}
