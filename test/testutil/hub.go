// Package testutil provides a fake model hub for command level tests.
package testutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// Hub serves one repository the way the hub API does: a JSON listing
// under /api/models/<repo> and files under /<repo>/resolve/main/<file>.
type Hub struct {
	*httptest.Server

	Repo      string
	Listings  atomic.Int32
	Downloads atomic.Int32

	files    map[string]string
	redirect bool

	mu    sync.Mutex
	auths []string
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithRedirect makes the resolve endpoint answer with a redirect to a
// storage URL carrying the digest in X-Linked-Etag.
func WithRedirect() HubOption {
	return func(h *Hub) { h.redirect = true }
}

// Digest returns the hex sha256 of content, as served in ETag headers.
func Digest(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// NewHub starts a Hub serving files of repo. It is closed with the test.
func NewHub(t *testing.T, repo string, files map[string]string, opts ...HubOption) *Hub {
	t.Helper()
	h := &Hub{Repo: repo, files: files}
	for _, opt := range opts {
		opt(h)
	}
	h.Server = httptest.NewServer(http.HandlerFunc(h.serve))
	t.Cleanup(h.Close)
	return h
}

// Authorizations returns the Authorization header of every request seen.
func (h *Hub) Authorizations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.auths...)
}

func (h *Hub) serve(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	h.auths = append(h.auths, r.Header.Get("Authorization"))
	h.mu.Unlock()

	resolvePrefix := "/" + h.Repo + "/resolve/main/"
	switch {
	case r.URL.Path == "/api/models/"+h.Repo:
		h.Listings.Add(1)
		h.serveListing(w)
	case strings.HasPrefix(r.URL.Path, resolvePrefix):
		name := strings.TrimPrefix(r.URL.Path, resolvePrefix)
		content, ok := h.files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if h.redirect {
			w.Header().Set("X-Linked-Etag", `"`+Digest(content)+`"`)
			http.Redirect(w, r, "/storage/"+name, http.StatusFound)
			return
		}
		h.serveFile(w, r, name, content, true)
	case strings.HasPrefix(r.URL.Path, "/storage/"):
		name := strings.TrimPrefix(r.URL.Path, "/storage/")
		content, ok := h.files[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.serveFile(w, r, name, content, false)
	default:
		http.NotFound(w, r)
	}
}

func (h *Hub) serveListing(w http.ResponseWriter) {
	names := make([]string, 0, len(h.files))
	for name := range h.files {
		names = append(names, name)
	}
	sort.Strings(names)

	siblings := []map[string]string{{"rfilename": "README.md"}}
	for _, n := range names {
		siblings = append(siblings, map[string]string{"rfilename": n})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"id": h.Repo, "siblings": siblings})
}

func (h *Hub) serveFile(w http.ResponseWriter, r *http.Request, name, content string, etag bool) {
	h.Downloads.Add(1)
	if etag {
		w.Header().Set("ETag", `"`+Digest(content)+`"`)
	}
	http.ServeContent(w, r, name, time.Time{}, strings.NewReader(content))
}

// SetupTestConfig writes a config file pointing at endpoint into a new
// temporary config directory and returns that directory.
func SetupTestConfig(t *testing.T, endpoint string) string {
	t.Helper()

	configDir := filepath.Join(t.TempDir(), "config")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configStr := "settings:\n" +
		"  endpoint: " + endpoint + "\n" +
		"  http_timeout: 5s\n" +
		"  lock_timeout: 5s\n"
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configStr), 0o600); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return configDir
}
