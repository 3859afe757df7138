package rebuild

import (
	"os"

	"github.com/rs/zerolog"

	"enginectl/internal/config"
	"enginectl/internal/signature"
)

// Decision is the rebuild verdict for one invocation.
type Decision struct {
	Rebuild     bool
	ChangedKeys []string
	// ForcedFullWipe is set when the engine kind changed since the last
	// recorded build. A mode switch invalidates assumptions that ordinary
	// parameter changes do not, so all cached state for both the old and
	// new kind must be deleted before proceeding.
	ForcedFullWipe bool
	// PrevKind is the recorded engine kind, set when ForcedFullWipe is.
	PrevKind string
	// PrevCheckpointDir and PrevEngineDir are the artifact directories the
	// record names. Under a mode-keyed layout they point at the previous
	// mode's directories after a mode change, which would otherwise be
	// orphaned.
	PrevCheckpointDir string
	PrevEngineDir     string
	Reason            string
}

// Engine compares the current snapshot against the persisted build record.
type Engine struct {
	RecordPath string
	Log        zerolog.Logger
}

// Decide reports whether the pipeline must act. A missing or unparseable
// record is a first run. Otherwise every tracked parameter is diffed
// individually, and the recomputed signature is compared as an independent
// confirmation: a signature mismatch with no named key signals record
// corruption or a parameter added since the record was written, and rebuilds
// just the same.
func (e *Engine) Decide(snap config.Snapshot) Decision {
	rec, err := signature.Load(e.RecordPath)
	if err != nil {
		if os.IsNotExist(err) {
			return Decision{Rebuild: true, Reason: "no prior build record"}
		}
		e.Log.Warn().Err(err).Str("record", e.RecordPath).Msg("build record unreadable, forcing rebuild")
		return Decision{Rebuild: true, Reason: "build record unreadable"}
	}

	d := Decision{
		ChangedKeys:       rec.Diff(snap),
		PrevCheckpointDir: rec.Params[config.ParamCheckpointDir],
		PrevEngineDir:     rec.Params[config.ParamEngineDir],
	}
	if prev := rec.Params[config.ParamEngineKind]; prev != "" && prev != snap.Get(config.ParamEngineKind) {
		d.ForcedFullWipe = true
		d.PrevKind = prev
	}
	sigMismatch := signature.Sign(snap) != rec.Signature
	switch {
	case len(d.ChangedKeys) > 0:
		d.Rebuild = true
		d.Reason = "tracked parameters changed"
	case sigMismatch:
		d.Rebuild = true
		d.Reason = "signature mismatch with no changed key (record drift)"
	}
	if d.Rebuild {
		e.Log.Info().
			Strs("changed", d.ChangedKeys).
			Bool("forced_full_wipe", d.ForcedFullWipe).
			Str("reason", d.Reason).
			Msg("rebuild required")
	}
	return d
}
