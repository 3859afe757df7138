package remote

import (
	"context"
	"errors"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"enginectl/internal/artifact"
	"enginectl/internal/hardware"
	"enginectl/pkg/types"
)

// Remote layout under the configured prefix:
//
//	<prefix>/checkpoints/<mode>/...
//	<prefix>/engines/<label>/...
//
// Engine labels are free-form; by convention sm<code> for the target arch.
const (
	checkpointsSegment = "checkpoints"
	enginesSegment     = "engines"
)

// Resolution is a usable remote artifact plus the pipeline stages it
// obsoletes.
type Resolution struct {
	Artifact     artifact.Descriptor
	SkipQuantize bool
	SkipCompile  bool
}

// Resolver prefers downloading a compatible prebuilt artifact over
// rebuilding locally.
type Resolver struct {
	Store  Store
	Prefix string
	// Label pins the engine label to download; empty selects automatically.
	Label       string
	MinEngineMB int
	Log         zerolog.Logger
}

// Resolve queries the remote store. A usable engine skips both quantization
// and compilation; a usable checkpoint skips quantization only. (nil, nil)
// means nothing usable was found and the build proceeds locally. An
// unavailable remote is returned as an error for the caller to degrade on.
func (r *Resolver) Resolve(ctx context.Context, arch hardware.Arch, pref types.Preference, mode, ckptDir, engineDir string) (*Resolution, error) {
	var files []types.RemoteFile
	err := withRetry(ctx, "list "+r.Prefix, func() error {
		var err error
		files, err = r.Store.List(ctx, r.Prefix)
		return err
	})
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	if pref != types.PreferCkptsOnly {
		if res, ok := r.tryEngine(ctx, arch, files, engineDir); ok {
			return res, nil
		}
	}
	if pref != types.PreferEnginesOnly {
		if res, ok := r.tryCheckpoint(ctx, arch, files, mode, ckptDir); ok {
			return res, nil
		}
	}
	return nil, nil
}

// tryEngine picks an engine label, downloads it, and validates it for the
// current architecture. Incompatibility falls through rather than failing
// the run: a wrong-arch engine upstream is a cache miss here.
func (r *Resolver) tryEngine(ctx context.Context, arch hardware.Arch, files []types.RemoteFile, engineDir string) (*Resolution, bool) {
	labels := r.engineLabels(files)
	if len(labels) == 0 {
		return nil, false
	}
	label := r.pickLabel(labels, arch)
	if label == "" {
		r.Log.Info().Strs("labels", labels).Msg("no engine label matches current architecture")
		return nil, false
	}
	src := path.Join(r.Prefix, enginesSegment, label)
	// Leftovers from a prior local build must not mix with the download: a
	// stale manifest would fail validation against the fetched engine.
	if err := os.RemoveAll(engineDir); err != nil {
		r.Log.Warn().Err(err).Msg("clearing engine dir failed")
		return nil, false
	}
	if err := DownloadPrefix(ctx, r.Store, src, engineDir); err != nil {
		r.Log.Warn().Err(err).Str("label", label).Msg("engine download failed")
		return nil, false
	}
	desc := artifact.Engine(engineDir, r.MinEngineMB)
	res, err := artifact.Validate(desc, arch)
	if err != nil {
		r.Log.Warn().Err(err).Str("label", label).Msg("remote engine rejected")
		_ = os.RemoveAll(engineDir)
		return nil, false
	}
	r.logFindings(res, "remote engine")
	r.Log.Info().Str("label", label).Msg("using prebuilt remote engine")
	return &Resolution{Artifact: desc, SkipQuantize: true, SkipCompile: true}, true
}

// tryCheckpoint downloads the checkpoint for the requested mode. The
// architecture check does not apply: checkpoints are portable.
func (r *Resolver) tryCheckpoint(ctx context.Context, arch hardware.Arch, files []types.RemoteFile, mode, ckptDir string) (*Resolution, bool) {
	src := path.Join(r.Prefix, checkpointsSegment, mode)
	if !anyUnder(files, src) {
		return nil, false
	}
	if err := os.RemoveAll(ckptDir); err != nil {
		r.Log.Warn().Err(err).Msg("clearing checkpoint dir failed")
		return nil, false
	}
	if err := DownloadPrefix(ctx, r.Store, src, ckptDir); err != nil {
		r.Log.Warn().Err(err).Msg("checkpoint download failed")
		return nil, false
	}
	desc := artifact.Checkpoint(ckptDir)
	res, err := artifact.Validate(desc, arch)
	if err != nil {
		r.Log.Warn().Err(err).Msg("remote checkpoint rejected")
		_ = os.RemoveAll(ckptDir)
		return nil, false
	}
	r.logFindings(res, "remote checkpoint")
	r.Log.Info().Str("mode", mode).Msg("using prebuilt remote checkpoint")
	return &Resolution{Artifact: desc, SkipQuantize: true}, true
}

// engineLabels collects the distinct <label> path segments under
// <prefix>/engines/, sorted for deterministic selection.
func (r *Resolver) engineLabels(files []types.RemoteFile) []string {
	base := path.Join(r.Prefix, enginesSegment) + "/"
	seen := map[string]struct{}{}
	for _, f := range files {
		if !strings.HasPrefix(f.Path, base) {
			continue
		}
		label, _, ok := strings.Cut(strings.TrimPrefix(f.Path, base), "/")
		if ok && label != "" {
			seen[label] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// pickLabel applies the selection order: explicit label, single label, label
// matching the current architecture code.
func (r *Resolver) pickLabel(labels []string, arch hardware.Arch) string {
	if r.Label != "" {
		for _, l := range labels {
			if l == r.Label {
				return l
			}
		}
		return ""
	}
	if len(labels) == 1 {
		return labels[0]
	}
	if arch.Detected() {
		want := arch.SMLabel()
		for _, l := range labels {
			if l == want {
				return l
			}
		}
	}
	return ""
}

func (r *Resolver) logFindings(res artifact.Result, what string) {
	if res.Warning != "" {
		r.Log.Warn().Str("warning", res.Warning).Msg(what + " below size minimum, proceeding")
	}
	if res.HeuristicOnly {
		r.Log.Warn().Msg(what + " compatibility confirmed by path heuristic only")
	}
}

func anyUnder(files []types.RemoteFile, prefix string) bool {
	p := prefix + "/"
	for _, f := range files {
		if strings.HasPrefix(f.Path, p) {
			return true
		}
	}
	return false
}
