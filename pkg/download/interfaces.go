package download

import (
	"context"
	"net/url"

	"github.com/glorpus-work/ggufy/pkg/auth"
)

// Manager downloads a single remote artifact into a local file, resuming
// from whatever prefix of the file is already on disk.
type Manager interface {
	Fetch(ctx context.Context, item Item, opts Options) (*Result, error)
}

// Item represents one remote resource to download.
type Item struct {
	URL       *url.URL           // source URL
	LocalPath string             // absolute destination; also the resume source
	Auth      auth.Authenticator // optional credentials

	// ValidatorPath, when set, names a small file holding the ETag or
	// Last-Modified value of the response that started LocalPath. Resumes
	// send it as If-Range so a changed remote file is fetched from the
	// start instead of being appended to the old prefix.
	ValidatorPath string
}

// ProgressFunc receives the bytes present on disk and the expected final
// size. total is -1 when the server did not announce a length.
type ProgressFunc func(written, total int64)

// Options control a single Fetch.
type Options struct {
	ForceRestart bool         // ignore any existing partial file
	ChunkSize    int          // copy buffer size; DefaultChunkSize when <= 0
	Progress     ProgressFunc // optional
}

// Result describes a finished Fetch.
type Result struct {
	Path            string
	BytesWritten    int64  // bytes transferred by this call
	Size            int64  // final file size
	ResumedFrom     int64  // offset requested from the server
	Restarted       bool   // the server ignored the range and the file was rewritten
	AlreadyComplete bool   // the server reported nothing left to send
	ETag            string // server digest, X-Linked-Etag preferred over ETag
}
