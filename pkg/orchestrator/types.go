//go:generate mockgen -destination=./mocks/orchestrator.go . Lookup,Downloader,Verifier

package orchestrator

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/glorpus-work/ggufy/pkg/download"
	"github.com/glorpus-work/ggufy/pkg/integrity"
	"github.com/glorpus-work/ggufy/pkg/reference"
)

// Lookup is the subset of the hub client used by the orchestrator.
type Lookup interface {
	FindLatest(ctx context.Context, owner, collection string) (string, error)
	ArtifactURL(owner, collection, filename string) *url.URL
}

// Downloader transfers one artifact into the cache.
type Downloader interface {
	Fetch(ctx context.Context, item download.Item, opts download.Options) (*download.Result, error)
}

// Verifier checks a cached file against a digest.
type Verifier interface {
	Verify(path string, expected integrity.Digest) integrity.Report
}

// Recorder receives metrics. *metrics.Recorder satisfies it.
type Recorder interface {
	RecordResolve(result string)
	RecordDownload(bytes int64, restarted bool, duration time.Duration)
	RecordIntegrity(status string)
	RecordHubRequest(operation string, success bool, duration time.Duration)
}

// Orchestrator ties the hub lookup, the downloader, the verifier and the
// cache together.
type Orchestrator struct {
	Hub      Lookup
	DL       Downloader
	Verifier Verifier
	Metrics  Recorder // optional
	Hooks    Hooks    // Hooks for progress and event notifications
	Log      *slog.Logger

	// LockTimeout bounds the wait for another process holding the same
	// cache entry. Zero waits until the context is done.
	LockTimeout time.Duration

	// Progress is passed to the downloader for every transfer.
	Progress download.ProgressFunc
}

// Event phases.
const (
	PhaseResolving   = "resolving"
	PhaseDownloading = "downloading"
	PhaseVerifying   = "verifying"
	PhaseWarning     = "warning"
	PhaseDone        = "done"
	PhaseError       = "error"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	ID    string // reference being resolved
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

// Resolution is the outcome of Resolve.
type Resolution struct {
	// LocalPath is the absolute path of the complete artifact.
	LocalPath string
	// Reference carries the concrete filename, also when "latest" was asked.
	Reference reference.Reference
	CacheHit  bool
	// Verification is the zero Report on a cache hit.
	Verification integrity.Report
	// Download is nil on a cache hit.
	Download *download.Result
}

// VerifyResult pairs a cache entry with its verification report.
type VerifyResult struct {
	Entry  cache.Listing
	Report integrity.Report
}
