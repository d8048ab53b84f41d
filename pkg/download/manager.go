// Package download implements resumable HTTP downloads of single artifacts.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/glorpus-work/ggufy/pkg/auth"
	pkgerrors "github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
)

const (
	// DefaultChunkSize is the copy buffer size.
	DefaultChunkSize = 8192

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "ggufy/1.0"

	// HeaderLinkedETag carries the LFS object digest on hub redirects.
	HeaderLinkedETag = "X-Linked-Etag"

	maxRedirects = 10
)

var (
	errIdleTimeout = errors.New("no data received within idle timeout")
	errRestart     = errors.New("restart without range")
)

// ManagerImpl is an HTTP download manager that appends to partial files
// using range requests. It performs no retries.
type ManagerImpl struct {
	client      *http.Client
	userAgent   string
	idleTimeout time.Duration
	log         *slog.Logger
}

// Option configures a ManagerImpl.
type Option func(*ManagerImpl)

// WithLogger sets the logger used for warnings and debug output.
func WithLogger(l *slog.Logger) Option {
	return func(m *ManagerImpl) {
		if l != nil {
			m.log = l
		}
	}
}

// WithIdleTimeout overrides how long the body may stall before the
// download is aborted.
func WithIdleTimeout(d time.Duration) Option {
	return func(m *ManagerImpl) { m.idleTimeout = d }
}

// NewManager creates a download manager. timeout bounds both the wait for
// response headers and any stall while reading the body; the transfer as a
// whole is not limited, since artifacts can be many gigabytes.
func NewManager(timeout time.Duration, userAgent string, opts ...Option) *ManagerImpl {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if timeout > 0 {
		transport.ResponseHeaderTimeout = timeout
	}
	m := &ManagerImpl{
		client:      &http.Client{Transport: transport},
		userAgent:   userAgent,
		idleTimeout: timeout,
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Fetch downloads item.URL into item.LocalPath. An existing file is taken
// as a partial download and resumed with a range request unless
// opts.ForceRestart is set. When the server answers a range request with a
// full body the file is truncated and rewritten from the start.
func (m *ManagerImpl) Fetch(ctx context.Context, item Item, opts Options) (*Result, error) {
	if item.URL == nil {
		return nil, fmt.Errorf("nil URL: %w", pkgerrors.ErrInvalidPath)
	}
	if item.LocalPath == "" || !filepath.IsAbs(item.LocalPath) {
		return nil, fmt.Errorf("download path must be absolute: %s: %w", item.LocalPath, pkgerrors.ErrInvalidPath)
	}
	if err := os.MkdirAll(filepath.Dir(item.LocalPath), fsutil.DirModeDefault); err != nil {
		return nil, pkgerrors.Wrap(err, "could not create download dir")
	}

	var offset int64
	if !opts.ForceRestart {
		if size, ok := fsutil.FileSize(item.LocalPath); ok {
			offset = size
		}
	}
	res := &Result{Path: item.LocalPath, ResumedFrom: offset}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var validator string
	if offset > 0 {
		validator = readValidator(item.ValidatorPath)
	}

	var linkedETag string
	resp, err := m.doRequest(ctx, item, offset, validator, &linkedETag)
	if err != nil {
		return nil, m.classify(ctx, err, "download failed")
	}

	start, err := m.negotiate(resp, offset, res)
	if errors.Is(err, errRestart) {
		_ = resp.Body.Close()
		m.log.Warn("range not satisfiable, restarting download", "path", item.LocalPath, "offset", offset)
		res.Restarted = true
		resp, err = m.doRequest(ctx, item, 0, "", &linkedETag)
		if err != nil {
			return nil, m.classify(ctx, err, "download failed")
		}
		start, err = m.negotiate(resp, 0, res)
	}
	if err != nil {
		_ = resp.Body.Close()
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	res.ETag = linkedETag
	if res.ETag == "" {
		res.ETag = resp.Header.Get(HeaderLinkedETag)
	}
	if res.ETag == "" {
		res.ETag = resp.Header.Get("ETag")
	}

	if res.AlreadyComplete {
		res.Size = offset
		m.dropValidator(item.ValidatorPath)
		return res, nil
	}
	if start == 0 {
		m.storeValidator(item.ValidatorPath, resp)
	}

	written, err := m.writeBody(ctx, cancel, resp, item.LocalPath, start, opts)
	res.BytesWritten = written
	res.Size = start + written
	if err == nil {
		m.dropValidator(item.ValidatorPath)
	}
	return res, err
}

func readValidator(path string) string {
	if path == "" {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// storeValidator records the validator of a response that starts the file
// at offset zero. Weak ETags cannot be used with If-Range and fall back to
// Last-Modified.
func (m *ManagerImpl) storeValidator(path string, resp *http.Response) {
	if path == "" {
		return
	}
	v := resp.Header.Get("ETag")
	if v == "" || strings.HasPrefix(v, "W/") {
		v = resp.Header.Get("Last-Modified")
	}
	if v == "" {
		m.dropValidator(path)
		return
	}
	if err := os.WriteFile(path, []byte(v), fsutil.FileModeDefault); err != nil {
		m.log.Warn("could not record partial download validator", "path", path, "error", err)
	}
}

func (m *ManagerImpl) dropValidator(path string) {
	if path == "" {
		return
	}
	if err := fsutil.RemoveIfExists(path); err != nil {
		m.log.Warn("could not remove partial download validator", "path", path, "error", err)
	}
}

func (m *ManagerImpl) doRequest(ctx context.Context, item Item, offset int64, validator string, linkedETag *string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, item.URL.String(), http.NoBody)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", m.userAgent)
	if offset > 0 {
		req.Header.Set("Range", "bytes="+strconv.FormatInt(offset, 10)+"-")
		if validator != "" {
			req.Header.Set("If-Range", validator)
		}
	}
	if err := auth.ApplyTo(item.Auth, req); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to apply credentials")
	}

	client := *m.client
	client.CheckRedirect = func(r *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		if r.Response != nil {
			if v := r.Response.Header.Get(HeaderLinkedETag); v != "" {
				*linkedETag = v
			}
		}
		return nil
	}
	return client.Do(req)
}

// negotiate interprets the response status for a request made at offset
// and returns the file offset the body starts at.
func (m *ManagerImpl) negotiate(resp *http.Response, offset int64, res *Result) (int64, error) {
	switch resp.StatusCode {
	case http.StatusPartialContent:
		start, _, ok := parseContentRange(resp.Header.Get("Content-Range"))
		if !ok || start != offset {
			if offset > 0 {
				return 0, errRestart
			}
			return 0, &pkgerrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Kind: pkgerrors.ErrNetwork}
		}
		return offset, nil

	case http.StatusOK:
		if offset > 0 {
			m.log.Warn("rewriting partial download from the start",
				"url", resp.Request.URL.String(), "offset", offset, "reason", pkgerrors.ErrPartialRangeNotHonored)
			res.Restarted = true
		}
		return 0, nil

	case http.StatusRequestedRangeNotSatisfiable:
		if offset > 0 {
			if _, total, ok := parseContentRange(resp.Header.Get("Content-Range")); ok && total == offset {
				res.AlreadyComplete = true
				return offset, nil
			}
			return 0, errRestart
		}
		return 0, &pkgerrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Kind: pkgerrors.ErrNetwork}

	case http.StatusNotFound:
		return 0, &pkgerrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Kind: pkgerrors.ErrArtifactNotFound}

	default:
		return 0, &pkgerrors.HTTPStatusError{StatusCode: resp.StatusCode, URL: resp.Request.URL.String(), Kind: pkgerrors.ErrNetwork}
	}
}

func (m *ManagerImpl) writeBody(ctx context.Context, cancel context.CancelCauseFunc, resp *http.Response, path string, start int64, opts Options) (int64, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if start > 0 {
		flags = os.O_WRONLY | os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, fsutil.FileModeDefault)
	if err != nil {
		return 0, pkgerrors.Wrap(err, "could not open file")
	}

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = resp.ContentLength + start
	}
	progress := opts.Progress
	if progress == nil {
		progress = func(int64, int64) {}
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	var watchdog *time.Timer
	if m.idleTimeout > 0 {
		watchdog = time.AfterFunc(m.idleTimeout, func() { cancel(errIdleTimeout) })
		defer watchdog.Stop()
	}

	progress(start, total)
	buf := make([]byte, chunk)
	var written int64
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if watchdog != nil {
				watchdog.Reset(m.idleTimeout)
			}
			if _, err := f.Write(buf[:n]); err != nil {
				_ = f.Close()
				return written, pkgerrors.Wrap(err, "could not write file")
			}
			written += int64(n)
			progress(start+written, total)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			_ = f.Close()
			return written, m.classify(ctx, readErr, "download interrupted")
		}
	}

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return written, pkgerrors.Wrap(err, "could not sync file")
	}
	if err := f.Close(); err != nil {
		return written, pkgerrors.Wrap(err, "could not close file")
	}
	if resp.ContentLength >= 0 && written != resp.ContentLength {
		return written, pkgerrors.Network(io.ErrUnexpectedEOF, fmt.Sprintf("short body: got %d of %d bytes", written, resp.ContentLength))
	}
	return written, nil
}

// classify maps a transport error to ErrNetwork unless it stems from the
// caller cancelling ctx.
func (m *ManagerImpl) classify(ctx context.Context, err error, msg string) error {
	cause := context.Cause(ctx)
	switch {
	case cause == nil:
		return pkgerrors.Network(err, msg)
	case errors.Is(cause, errIdleTimeout), errors.Is(cause, context.DeadlineExceeded):
		return pkgerrors.Network(cause, msg)
	default:
		return pkgerrors.Wrap(cause, msg)
	}
}

// parseContentRange parses "bytes first-last/total" and "bytes */total".
// total is -1 when given as "*".
func parseContentRange(v string) (start, total int64, ok bool) {
	v = strings.TrimSpace(v)
	rest, found := strings.CutPrefix(v, "bytes ")
	if !found {
		return 0, 0, false
	}
	rng, size, found := strings.Cut(rest, "/")
	if !found {
		return 0, 0, false
	}

	total = -1
	if size != "*" {
		n, err := strconv.ParseInt(size, 10, 64)
		if err != nil {
			return 0, 0, false
		}
		total = n
	}

	if rng == "*" {
		return 0, total, true
	}
	first, _, found := strings.Cut(rng, "-")
	if !found {
		return 0, 0, false
	}
	start, err := strconv.ParseInt(first, 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return start, total, true
}
