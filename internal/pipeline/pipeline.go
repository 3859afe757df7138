package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"enginectl/internal/artifact"
	"enginectl/internal/config"
	"enginectl/internal/hardware"
	"enginectl/internal/policy"
	"enginectl/internal/rebuild"
	"enginectl/internal/remote"
	"enginectl/internal/signature"
	"enginectl/pkg/types"
)

// Pipeline sequences remote resolution, quantization, compilation,
// validation and record persistence for one invocation. One pipeline runs at
// a time; the accelerator is an exclusive resource.
type Pipeline struct {
	Cfg  config.Config
	Arch hardware.Arch
	// Store is the remote artifact store, nil when none is configured.
	Store remote.Store
	// Force bypasses the skip path unconditionally.
	Force bool
	// Push uploads freshly built artifacts after the record is persisted.
	Push  bool
	RunID string
	Log   zerolog.Logger
}

// Outcome summarizes what a run did.
type Outcome struct {
	RunID            string
	CacheHit         bool
	RemoteEngine     bool
	RemoteCheckpoint bool
	QuantizeRan      bool
	CompileRan       bool
	Pushed           bool
	Signature        string
}

// Run executes the state machine:
//
//	START -> (mode-switch check) -> [WIPE] -> REMOTE_RESOLVE ->
//	{SKIP_TO_VALIDATE | QUANTIZE} -> COMPILE -> VALIDATE ->
//	PERSIST_RECORD -> DONE
//
// A crash anywhere before PERSIST_RECORD is safe: the next invocation sees a
// missing or stale record and rebuilds.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	if err := p.Cfg.Validate(); err != nil {
		return Outcome{}, p.fail("config", err)
	}
	if p.RunID == "" {
		p.RunID = uuid.NewString()
	}
	log := p.Log.With().Str("run_id", p.RunID).Logger()
	out := Outcome{RunID: p.RunID}

	snap := config.Capture(p.Cfg)
	out.Signature = signature.Sign(snap)

	// The lock must cover the record read, not just the build: a concurrent
	// invocation could rewrite the record between decision and action.
	release, err := acquireLock(p.Cfg.RecordPath + ".lock")
	if err != nil {
		return out, p.fail("lock", err)
	}
	defer release()

	dec := (&rebuild.Engine{RecordPath: p.Cfg.RecordPath, Log: log}).Decide(snap)

	if dec.ForcedFullWipe {
		log.Warn().Str("prev_kind", dec.PrevKind).Str("new_kind", p.Cfg.EngineKind).
			Msg("engine kind switched, wiping all cached state")
		wipesTotal.Inc()
		if err := rebuild.Wipe(p.Cfg); err != nil {
			return out, p.fail("wipe", err)
		}
	}

	engineDesc := artifact.Engine(p.Cfg.EngineDir, p.Cfg.MinEngineMB)
	if !p.Force && !dec.Rebuild && !dec.ForcedFullWipe {
		// Signature equality is necessary but not sufficient: the artifact
		// directory can vanish or rot underneath an intact record.
		res, err := artifact.Validate(engineDesc, p.Arch)
		if err == nil {
			p.logFindings(log, res)
			log.Info().Str("engine_dir", p.Cfg.EngineDir).Msg("configuration unchanged and artifact valid, nothing to do")
			cacheHitsTotal.Inc()
			out.CacheHit = true
			return out, nil
		}
		log.Warn().Err(err).Msg("record is clean but artifact failed validation, rebuilding")
		dec.Reason = "artifact invalid"
	}
	if p.Force && dec.Reason == "" {
		dec.Reason = "forced"
	}
	rebuildsTotal.WithLabelValues(dec.Reason).Inc()

	// A mode-keyed layout re-derives the artifact directories from the new
	// mode, leaving the previous mode's directories behind. Remove the
	// recorded ones the current layout no longer points at.
	for _, stale := range []string{dec.PrevCheckpointDir, dec.PrevEngineDir} {
		if stale == "" || stale == p.Cfg.CheckpointDir || stale == p.Cfg.EngineDir {
			continue
		}
		log.Info().Str("dir", stale).Msg("removing artifact directory from previous layout")
		if err := os.RemoveAll(stale); err != nil {
			return out, p.fail("wipe", err)
		}
	}

	pol, err := policy.Resolve(p.Arch, p.Cfg.Mode)
	if err != nil {
		return out, p.fail("policy", err)
	}
	log.Info().
		Str("weight_format", pol.WeightFormat).
		Str("kv_cache_dtype", pol.KVCacheDtype).
		Str("attn_backend", pol.AttnBackend).
		Msg("quantization policy resolved")

	skipQuantize, skipCompile := false, false
	if p.Store != nil {
		res := p.resolveRemote(ctx, log)
		if res != nil {
			skipQuantize, skipCompile = res.SkipQuantize, res.SkipCompile
			out.RemoteEngine = res.SkipCompile
			out.RemoteCheckpoint = res.SkipQuantize && !res.SkipCompile
			remoteHitsTotal.WithLabelValues(string(res.Artifact.Kind)).Inc()
		}
	}

	compileInput := p.Cfg.CheckpointDir
	if !skipQuantize {
		if pol.Quantized {
			if err := os.RemoveAll(p.Cfg.CheckpointDir); err != nil {
				return out, p.fail("quantize", err)
			}
			if err := p.runQuantizer(ctx, pol); err != nil {
				return out, p.fail("quantize", err)
			}
			out.QuantizeRan = true
			if err := artifact.WriteManifest(p.Cfg.CheckpointDir, artifact.Manifest{
				Precision:    p.Cfg.Mode,
				Quantization: pol.WeightFormat,
				EngineKind:   p.Cfg.EngineKind,
				RunID:        p.RunID,
			}); err != nil {
				return out, p.fail("quantize", err)
			}
		} else {
			// Explicit passthrough: compile straight from the source model.
			log.Info().Msg("no quantization applied for this policy")
			compileInput = p.Cfg.ModelDir
		}
	}

	if !skipCompile {
		if err := os.RemoveAll(p.Cfg.EngineDir); err != nil {
			return out, p.fail("compile", err)
		}
		if err := p.runCompiler(ctx, pol, compileInput); err != nil {
			return out, p.fail("compile", err)
		}
		out.CompileRan = true
		if err := artifact.WriteManifest(p.Cfg.EngineDir, artifact.Manifest{
			ComputeCap:   p.Arch.Code,
			Precision:    p.Cfg.Mode,
			Quantization: pol.WeightFormat,
			EngineKind:   p.Cfg.EngineKind,
			RunID:        p.RunID,
		}); err != nil {
			return out, p.fail("compile", err)
		}
	}

	// A failed validation after a local build is not transient; no retry.
	res, err := artifact.Validate(engineDesc, p.Arch)
	if err != nil {
		return out, p.fail("validate", err)
	}
	p.logFindings(log, res)

	if err := signature.Write(p.Cfg.RecordPath, snap, out.Signature, p.RunID); err != nil {
		return out, p.fail("persist", err)
	}
	log.Info().Str("record", p.Cfg.RecordPath).Str("signature", out.Signature).Msg("build record persisted")

	if p.Push && p.Store != nil && out.CompileRan {
		if err := p.push(ctx, log, out.QuantizeRan); err != nil {
			return out, p.fail("push", err)
		}
		out.Pushed = true
	}
	return out, nil
}

// resolveRemote consults the store; an unreachable remote degrades to a
// local build instead of aborting.
func (p *Pipeline) resolveRemote(ctx context.Context, log zerolog.Logger) *remote.Resolution {
	r := &remote.Resolver{
		Store:       p.Store,
		Prefix:      p.Cfg.RemotePrefix,
		Label:       p.Cfg.RemoteLabel,
		MinEngineMB: p.Cfg.MinEngineMB,
		Log:         log,
	}
	res, err := r.Resolve(ctx, p.Arch, types.Preference(p.Cfg.Preference), p.Cfg.Mode,
		p.Cfg.CheckpointDir, p.Cfg.EngineDir)
	if err != nil {
		log.Warn().Err(err).Msg("remote store unavailable, falling back to local build")
		return nil
	}
	return res
}

// push uploads the freshly built artifacts under the remote prefix.
func (p *Pipeline) push(ctx context.Context, log zerolog.Logger, withCheckpoint bool) error {
	label := p.Cfg.RemoteLabel
	if label == "" {
		label = p.Arch.SMLabel()
	}
	if label == "" {
		label = "default"
	}
	dst := path.Join(p.Cfg.RemotePrefix, "engines", label)
	log.Info().Str("dst", dst).Msg("pushing engine")
	if err := remote.UploadDir(ctx, p.Store, p.Cfg.EngineDir, dst); err != nil {
		return fmt.Errorf("push engine: %w", err)
	}
	if withCheckpoint {
		dst := path.Join(p.Cfg.RemotePrefix, "checkpoints", p.Cfg.Mode)
		log.Info().Str("dst", dst).Msg("pushing checkpoint")
		if err := remote.UploadDir(ctx, p.Store, p.Cfg.CheckpointDir, dst); err != nil {
			return fmt.Errorf("push checkpoint: %w", err)
		}
	}
	return nil
}

func (p *Pipeline) logFindings(log zerolog.Logger, res artifact.Result) {
	if res.Warning != "" {
		log.Warn().Str("warning", res.Warning).Msg("artifact below size minimum, proceeding")
	}
	if res.HeuristicOnly {
		log.Warn().Msg("artifact compatibility confirmed by path heuristic only")
	}
}

func (p *Pipeline) fail(stage string, err error) error {
	failuresTotal.WithLabelValues(stage).Inc()
	return fmt.Errorf("%s: %w", stage, err)
}
