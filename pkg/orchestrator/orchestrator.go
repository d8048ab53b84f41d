// Package orchestrator resolves model references to complete local files.
// It is the single entry point used by the command line: parse the
// reference, pick the latest artifact when needed, take the per-entry
// lock, then either return the cached file or download, verify and record
// it.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/glorpus-work/ggufy/pkg/auth"
	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/glorpus-work/ggufy/pkg/config"
	"github.com/glorpus-work/ggufy/pkg/download"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
	"github.com/glorpus-work/ggufy/pkg/integrity"
	"github.com/glorpus-work/ggufy/pkg/metrics"
	"github.com/glorpus-work/ggufy/pkg/reference"
)

func emit(h Hooks, e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}

func (o *Orchestrator) logger() *slog.Logger {
	if o.Log != nil {
		return o.Log
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o *Orchestrator) recordResolve(result string) {
	if o.Metrics != nil {
		o.Metrics.RecordResolve(result)
	}
}

func (o *Orchestrator) check() error {
	switch {
	case o.Hub == nil:
		return fmt.Errorf("hub lookup is not configured")
	case o.DL == nil:
		return fmt.Errorf("download manager is not configured")
	case o.Verifier == nil:
		return fmt.Errorf("verifier is not configured")
	}
	return nil
}

// Resolve returns the local path of the artifact named by text, downloading
// it into env.CacheDir when it is not cached yet. credential may be empty
// for anonymous access. force discards any cached or partial copy.
//
// An integrity mismatch does not fail the call: the path is returned and
// the mismatch is reported in Resolution.Verification and as a warning
// event.
func (o *Orchestrator) Resolve(ctx context.Context, env config.Environment, text, credential string, force bool) (*Resolution, error) {
	res, err := o.resolve(ctx, env, text, credential, force)
	if err != nil {
		o.recordResolve(metrics.ResultError)
		emit(o.Hooks, Event{Phase: PhaseError, ID: text, Msg: err.Error()})
		return nil, err
	}
	if res.CacheHit {
		o.recordResolve(metrics.ResultHit)
	} else {
		o.recordResolve(metrics.ResultMiss)
	}
	emit(o.Hooks, Event{Phase: PhaseDone, ID: text, Msg: res.LocalPath})
	return res, nil
}

func (o *Orchestrator) resolve(ctx context.Context, env config.Environment, text, credential string, force bool) (*Resolution, error) {
	if err := o.check(); err != nil {
		return nil, err
	}
	if env.CacheDir == "" {
		return nil, errors.ErrCacheDirectory
	}

	ref, err := reference.Parse(text)
	if err != nil {
		return nil, err
	}

	creds := auth.FromToken(credential)
	if creds != nil {
		ctx = auth.NewContext(ctx, creds)
	}

	emit(o.Hooks, Event{Phase: PhaseResolving, ID: text, Msg: ref.RepoName()})
	if ref.IsLatest() {
		filename, err := o.findLatest(ctx, ref)
		if err != nil {
			return nil, err
		}
		ref = ref.WithFilename(filename)
		o.logger().Debug("selected latest artifact", "repo", ref.RepoName(), "file", filename)
	}

	path := cache.ArtifactPath(env.CacheDir, ref.Owner, ref.Collection, ref.Filename)
	unlock, err := cache.Lock(ctx, path, o.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(); err != nil {
			o.logger().Warn("failed to release cache lock", "path", path, "error", err)
		}
	}()

	if !force && fsutil.FileExists(path) && cache.HasMetadata(path) {
		o.logger().Debug("cache hit", "path", path)
		return &Resolution{LocalPath: path, Reference: ref, CacheHit: true}, nil
	}

	if force {
		// Without its sidecar the entry counts as partial until the new
		// download has been recorded.
		if err := fsutil.RemoveIfExists(cache.MetadataPath(path)); err != nil {
			return nil, errors.Wrap(err, "failed to reset cache entry")
		}
	}

	return o.fetch(ctx, ref, path, creds, force)
}

func (o *Orchestrator) findLatest(ctx context.Context, ref reference.Reference) (string, error) {
	start := time.Now()
	filename, err := o.Hub.FindLatest(ctx, ref.Owner, ref.Collection)
	if o.Metrics != nil {
		o.Metrics.RecordHubRequest("find_latest", err == nil, time.Since(start))
	}
	return filename, err
}

func (o *Orchestrator) fetch(ctx context.Context, ref reference.Reference, path string, creds auth.Authenticator, force bool) (*Resolution, error) {
	item := download.Item{
		URL:       o.Hub.ArtifactURL(ref.Owner, ref.Collection, ref.Filename),
		LocalPath:     path,
		Auth:          creds,
		ValidatorPath: cache.ValidatorPath(path),
	}

	emit(o.Hooks, Event{Phase: PhaseDownloading, ID: ref.String(), Msg: item.URL.String()})
	start := time.Now()
	dl, err := o.DL.Fetch(ctx, item, download.Options{ForceRestart: force, Progress: o.Progress})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download %s", ref)
	}
	if o.Metrics != nil {
		o.Metrics.RecordDownload(dl.BytesWritten, dl.Restarted, time.Since(start))
	}

	emit(o.Hooks, Event{Phase: PhaseVerifying, ID: ref.String(), Msg: path})
	expected := integrity.ParseDigest(dl.ETag)
	report := o.Verifier.Verify(path, expected)
	if o.Metrics != nil {
		o.Metrics.RecordIntegrity(string(report.Status))
	}
	if w := report.Warning(); w != "" {
		o.logger().Warn(w, "path", path)
		emit(o.Hooks, Event{Phase: PhaseWarning, ID: ref.String(), Msg: w})
	}

	size := dl.Size
	if s, ok := fsutil.FileSize(path); ok {
		size = s
	}
	rec := cache.Record{
		RepoName:     ref.RepoName(),
		FileName:     ref.Filename,
		Digest:       expected.String(),
		Size:         size,
		DownloadedAt: time.Now().UTC(),
	}
	if err := cache.WriteMetadata(path, rec); err != nil {
		return nil, err
	}

	return &Resolution{
		LocalPath:    path,
		Reference:    ref,
		Verification: report,
		Download:     dl,
	}, nil
}

// ListCached returns every cache entry. It never writes.
func (o *Orchestrator) ListCached(env config.Environment) ([]cache.Listing, error) {
	return cache.List(env.CacheDir)
}

// Purge deletes the config directory and the whole cache.
func (o *Orchestrator) Purge(env config.Environment) error {
	if err := env.Validate(); err != nil {
		return err
	}
	o.logger().Debug("purging", "config_dir", env.ConfigDir, "cache_dir", env.CacheDir)
	return cache.PurgeAll(env.ConfigDir, env.CacheDir)
}

// Remove deletes cached entries matching text. A reference with a filename
// removes that file; a reference without one removes every recorded file
// of the repository. It returns the removed entries.
func (o *Orchestrator) Remove(ctx context.Context, env config.Environment, text string) ([]cache.Listing, error) {
	ref, err := reference.Parse(text)
	if err != nil {
		return nil, err
	}

	listings, err := cache.List(env.CacheDir)
	if err != nil {
		return nil, err
	}

	var removed []cache.Listing
	for _, l := range listings {
		if !l.Known || !ref.Matches(l.RepoName, l.FileName) {
			continue
		}
		if err := o.removeEntry(ctx, l.Path); err != nil {
			return removed, err
		}
		removed = append(removed, l)
	}

	// A partial download has no sidecar yet but still has a derivable path.
	if len(removed) == 0 && !ref.IsLatest() {
		path := cache.ArtifactPath(env.CacheDir, ref.Owner, ref.Collection, ref.Filename)
		if size, ok := fsutil.FileSize(path); ok {
			if err := o.removeEntry(ctx, path); err != nil {
				return nil, err
			}
			id := cache.DeriveKey(ref.Owner, ref.Collection, ref.Filename)
			removed = append(removed, cache.Listing{ID: id, RepoName: ref.RepoName(), FileName: ref.Filename, Path: path, Size: size})
		}
	}

	if len(removed) == 0 {
		return nil, fmt.Errorf("%s is not cached: %w", ref, errors.ErrArtifactNotFound)
	}
	return removed, nil
}

func (o *Orchestrator) removeEntry(ctx context.Context, path string) error {
	unlock, err := cache.Lock(ctx, path, o.LockTimeout)
	if err != nil {
		return err
	}
	defer func() { _ = unlock() }()

	freed, err := cache.RemoveEntry(path)
	if err != nil {
		return errors.Wrapf(err, "failed to remove %s", path)
	}
	o.logger().Debug("removed cache entry", "path", path, "bytes", freed)
	return nil
}

// VerifyCached re-checks cache entries against the digest recorded in
// their sidecars. Only entries accepted by match are hashed; a nil match
// selects every entry. Entries without metadata or digest are reported as
// skipped.
func (o *Orchestrator) VerifyCached(env config.Environment, match func(cache.Listing) bool) ([]VerifyResult, error) {
	if o.Verifier == nil {
		return nil, fmt.Errorf("verifier is not configured")
	}
	listings, err := cache.List(env.CacheDir)
	if err != nil {
		return nil, err
	}

	results := make([]VerifyResult, 0, len(listings))
	for _, l := range listings {
		if match != nil && !match(l) {
			continue
		}
		var report integrity.Report
		if !l.Known {
			report = integrity.Report{Status: integrity.StatusSkipped, Reason: "no metadata recorded"}
		} else {
			report = o.Verifier.Verify(l.Path, integrity.ParseRecorded(l.Digest))
		}
		if o.Metrics != nil {
			o.Metrics.RecordIntegrity(string(report.Status))
		}
		results = append(results, VerifyResult{Entry: l, Report: report})
	}
	return results, nil
}
