// Package hub talks to a Hugging Face compatible model hub: it lists the
// GGUF artifacts of a repository and builds artifact download URLs.
package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/glorpus-work/ggufy/pkg/auth"
	"github.com/glorpus-work/ggufy/pkg/errors"
)

const (
	// DefaultEndpoint is the public hub.
	DefaultEndpoint = "https://huggingface.co"

	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "ggufy/1.0"

	// ArtifactSuffix marks the files a repository listing is filtered to.
	ArtifactSuffix = ".gguf"

	// maxListingBytes bounds the repository metadata document.
	maxListingBytes = 32 << 20
)

// Client looks up repositories on the hub.
type Client struct {
	endpoint  *url.URL
	client    *http.Client
	auth      auth.Authenticator
	userAgent string
	order     Order
	log       *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithTimeout sets the timeout for metadata requests.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		if d > 0 {
			cl.client.Timeout = d
		}
	}
}

// WithAuthenticator attaches credentials to every request. A nil
// Authenticator keeps requests anonymous.
func WithAuthenticator(a auth.Authenticator) Option {
	return func(cl *Client) { cl.auth = a }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		if ua != "" {
			cl.userAgent = ua
		}
	}
}

// WithOrder selects how the latest artifact is chosen.
func WithOrder(o Order) Option {
	return func(cl *Client) { cl.order = o }
}

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) {
		if l != nil {
			cl.log = l
		}
	}
}

// NewClient creates a hub client for endpoint. An empty endpoint selects
// DefaultEndpoint.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	u, err := url.Parse(strings.TrimRight(endpoint, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%q: %w", endpoint, errors.ErrInvalidEndpoint)
	}

	c := &Client{
		endpoint:  u,
		client:    &http.Client{Timeout: 30 * time.Second},
		userAgent: DefaultUserAgent,
		order:     OrderLexical,
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Endpoint returns the hub base URL.
func (c *Client) Endpoint() string {
	return c.endpoint.String()
}

type repositoryInfo struct {
	Siblings []struct {
		RFilename string `json:"rfilename"`
	} `json:"siblings"`
}

// ListArtifacts returns the names of all GGUF files in owner/collection.
// Credentials stored in ctx with auth.NewContext take precedence over the
// client's Authenticator.
func (c *Client) ListArtifacts(ctx context.Context, owner, collection string) ([]string, error) {
	u := c.join("api", "models", owner, collection)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	creds := auth.FromContext(ctx)
	if creds == nil {
		creds = c.auth
	}
	if err := auth.ApplyTo(creds, req); err != nil {
		return nil, errors.Wrap(err, "failed to apply credentials")
	}

	c.log.Debug("listing repository", "url", u.String())
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Network(err, "repository lookup failed")
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &errors.HTTPStatusError{StatusCode: resp.StatusCode, URL: u.String(), Kind: errors.ErrRepositoryNotFound}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &errors.HTTPStatusError{StatusCode: resp.StatusCode, URL: u.String(), Kind: errors.ErrNetwork}
	}

	var info repositoryInfo
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxListingBytes)).Decode(&info); err != nil {
		return nil, errors.Network(err, "failed to decode repository listing")
	}

	files := make([]string, 0, len(info.Siblings))
	for _, s := range info.Siblings {
		if strings.HasSuffix(s.RFilename, ArtifactSuffix) {
			files = append(files, s.RFilename)
		}
	}
	c.log.Debug("repository listed", "repo", owner+"/"+collection, "artifacts", len(files))
	return files, nil
}

// FindLatest returns the newest GGUF file of owner/collection according to
// the client's Order.
func (c *Client) FindLatest(ctx context.Context, owner, collection string) (string, error) {
	files, err := c.ListArtifacts(ctx, owner, collection)
	if err != nil {
		return "", err
	}
	latest, ok := SelectLatest(files, c.order)
	if !ok {
		return "", fmt.Errorf("%s/%s: %w", owner, collection, errors.ErrNoArtifactFound)
	}
	return latest, nil
}

// ArtifactURL returns the download URL of filename in owner/collection.
func (c *Client) ArtifactURL(owner, collection, filename string) *url.URL {
	return c.join(owner, collection, "resolve", "main", filename)
}

// join appends elem to the endpoint path. The result is always rooted,
// also for an endpoint given as a bare host.
func (c *Client) join(elem ...string) *url.URL {
	u := c.endpoint.JoinPath(elem...)
	if !strings.HasPrefix(u.Path, "/") {
		u.Path = "/" + u.Path
		if u.RawPath != "" {
			u.RawPath = "/" + u.RawPath
		}
	}
	return u
}
