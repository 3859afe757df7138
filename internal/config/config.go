package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds every parameter of a pipeline invocation.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	// Tracked parameters: a change to any of these invalidates the cache.
	ModelID        string `json:"model_id" yaml:"model_id" toml:"model_id"`
	Mode           string `json:"mode" yaml:"mode" toml:"mode"`
	EngineKind     string `json:"engine_kind" yaml:"engine_kind" toml:"engine_kind"`
	CheckpointDir  string `json:"checkpoint_dir" yaml:"checkpoint_dir" toml:"checkpoint_dir"`
	EngineDir      string `json:"engine_dir" yaml:"engine_dir" toml:"engine_dir"`
	MaxBatchTokens int    `json:"max_batch_tokens" yaml:"max_batch_tokens" toml:"max_batch_tokens"`
	MaxNumSeqs     int    `json:"max_num_seqs" yaml:"max_num_seqs" toml:"max_num_seqs"`
	KVCacheDtype   string `json:"kv_cache_dtype" yaml:"kv_cache_dtype" toml:"kv_cache_dtype"`
	TensorParallel int    `json:"tensor_parallel" yaml:"tensor_parallel" toml:"tensor_parallel"`
	ChunkedPrefill bool   `json:"chunked_prefill" yaml:"chunked_prefill" toml:"chunked_prefill"`
	PagedKV        bool   `json:"paged_kv" yaml:"paged_kv" toml:"paged_kv"`

	// Untracked plumbing: where the model source lives, where the record is
	// kept, how to reach the remote store and the external tools.
	ModelDir     string `json:"model_dir" yaml:"model_dir" toml:"model_dir"`
	RecordPath   string `json:"record_path" yaml:"record_path" toml:"record_path"`
	RemoteURL    string `json:"remote_url" yaml:"remote_url" toml:"remote_url"`
	RemotePrefix string `json:"remote_prefix" yaml:"remote_prefix" toml:"remote_prefix"`
	RemoteLabel  string `json:"remote_label" yaml:"remote_label" toml:"remote_label"`
	Preference   string `json:"preference" yaml:"preference" toml:"preference"`
	QuantizerBin string `json:"quantizer_bin" yaml:"quantizer_bin" toml:"quantizer_bin"`
	CompilerBin  string `json:"compiler_bin" yaml:"compiler_bin" toml:"compiler_bin"`
	MinEngineMB  int    `json:"min_engine_mb" yaml:"min_engine_mb" toml:"min_engine_mb"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields with defaults derived from the model id.
func (c *Config) ApplyDefaults() {
	if c.Mode == "" {
		c.Mode = ModeCompact
	}
	if c.EngineKind == "" {
		c.EngineKind = "trtllm"
	}
	if c.Preference == "" {
		c.Preference = "auto"
	}
	if c.CheckpointDir == "" && c.ModelDir != "" {
		c.CheckpointDir = filepath.Join(filepath.Dir(c.ModelDir), "checkpoints", c.Mode)
	}
	if c.EngineDir == "" && c.ModelDir != "" {
		c.EngineDir = filepath.Join(filepath.Dir(c.ModelDir), "engines", c.Mode)
	}
	if c.RecordPath == "" && c.EngineDir != "" {
		c.RecordPath = filepath.Join(filepath.Dir(c.EngineDir), "build_record.txt")
	}
	if c.QuantizerBin == "" {
		c.QuantizerBin = "quantize-model"
	}
	if c.CompilerBin == "" {
		c.CompilerBin = "build-engine"
	}
	if c.MinEngineMB <= 0 {
		c.MinEngineMB = 16
	}
	if c.MaxBatchTokens <= 0 {
		c.MaxBatchTokens = 8192
	}
	if c.MaxNumSeqs <= 0 {
		c.MaxNumSeqs = 64
	}
	if c.TensorParallel <= 0 {
		c.TensorParallel = 1
	}
}

// Validate reports the first required parameter that is unset. It runs before
// any expensive work so misconfiguration never reaches the GPU.
func (c *Config) Validate() error {
	if c.ModelID == "" {
		return errMissingParam(ParamModelID)
	}
	if c.ModelDir == "" {
		return errMissingParam("model_dir")
	}
	if c.Mode != ModeCompact && c.Mode != ModeBase {
		return badValueError{param: ParamMode, value: c.Mode, want: "compact|base"}
	}
	if c.CheckpointDir == "" {
		return errMissingParam(ParamCheckpointDir)
	}
	if c.EngineDir == "" {
		return errMissingParam(ParamEngineDir)
	}
	if c.RecordPath == "" {
		return errMissingParam("record_path")
	}
	return nil
}
