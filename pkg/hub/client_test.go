package hub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/glorpus-work/ggufy/pkg/auth"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHub(t *testing.T, handler http.HandlerFunc, opts ...hub.Option) *hub.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := hub.NewClient(server.URL, opts...)
	require.NoError(t, err)
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name        string
		endpoint    string
		expected    string
		expectError bool
	}{
		{name: "default endpoint", endpoint: "", expected: hub.DefaultEndpoint},
		{name: "trailing slash trimmed", endpoint: "http://mirror.local/", expected: "http://mirror.local"},
		{name: "missing scheme", endpoint: "huggingface.co", expectError: true},
		{name: "garbage", endpoint: "://", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := hub.NewClient(tt.endpoint)
			if tt.expectError {
				require.Error(t, err)
				assert.ErrorIs(t, err, errors.ErrInvalidEndpoint)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c.Endpoint())
		})
	}
}

func TestListArtifacts(t *testing.T) {
	var gotPath, gotAuth, gotUA string
	c := newHub(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"owner/model","siblings":[
			{"rfilename":"README.md"},
			{"rfilename":"model-q4.gguf"},
			{"rfilename":"config.json"},
			{"rfilename":"model-q8.gguf"}
		]}`))
	}, hub.WithAuthenticator(auth.FromToken("hf_secret")), hub.WithUserAgent("ggufy-test"))

	files, err := c.ListArtifacts(context.Background(), "owner", "model")
	require.NoError(t, err)

	assert.Equal(t, []string{"model-q4.gguf", "model-q8.gguf"}, files)
	assert.Equal(t, "/api/models/owner/model", gotPath)
	assert.Equal(t, "Bearer hf_secret", gotAuth)
	assert.Equal(t, "ggufy-test", gotUA)
}

func TestListArtifacts_Anonymous(t *testing.T) {
	c := newHub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"siblings":[]}`))
	})

	files, err := c.ListArtifacts(context.Background(), "owner", "model")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestListArtifacts_EndpointWithPathPrefix(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"siblings":[{"rfilename":"m.gguf"}]}`))
	}))
	t.Cleanup(server.Close)

	c, err := hub.NewClient(server.URL + "/hf")
	require.NoError(t, err)

	files, err := c.ListArtifacts(context.Background(), "owner", "model")
	require.NoError(t, err)
	assert.Equal(t, []string{"m.gguf"}, files)
	assert.Equal(t, "/hf/api/models/owner/model", gotPath)
}

func TestListArtifacts_ContextCredentials(t *testing.T) {
	var gotAuth string
	c := newHub(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"siblings":[]}`))
	}, hub.WithAuthenticator(auth.FromToken("hf_default")))

	ctx := auth.NewContext(context.Background(), auth.FromToken("hf_override"))
	_, err := c.ListArtifacts(ctx, "owner", "model")
	require.NoError(t, err)
	assert.Equal(t, "Bearer hf_override", gotAuth)
}

func TestListArtifacts_Errors(t *testing.T) {
	tests := []struct {
		name     string
		handler  http.HandlerFunc
		expected error
		status   int
	}{
		{
			name:     "missing repository",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) },
			expected: errors.ErrRepositoryNotFound,
			status:   http.StatusNotFound,
		},
		{
			name:     "unauthorized",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusUnauthorized) },
			expected: errors.ErrNetwork,
			status:   http.StatusUnauthorized,
		},
		{
			name:     "server error",
			handler:  func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusBadGateway) },
			expected: errors.ErrNetwork,
			status:   http.StatusBadGateway,
		},
		{
			name: "malformed json",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"siblings":`))
			},
			expected: errors.ErrNetwork,
		},
		{
			name: "slow server",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
			},
			expected: errors.ErrNetwork,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHub(t, tt.handler, hub.WithTimeout(100*time.Millisecond))

			_, err := c.ListArtifacts(context.Background(), "owner", "model")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.expected)
			assert.Equal(t, tt.status, errors.StatusCode(err))
		})
	}
}

func TestFindLatest(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		order    hub.Order
		expected string
		err      error
	}{
		{
			name:     "lexical order picks greatest string",
			body:     `{"siblings":[{"rfilename":"a-v1.gguf"},{"rfilename":"a-v10.gguf"},{"rfilename":"a-v2.gguf"}]}`,
			order:    hub.OrderLexical,
			expected: "a-v2.gguf",
		},
		{
			name:     "version order compares numerically",
			body:     `{"siblings":[{"rfilename":"a-v1.gguf"},{"rfilename":"a-v10.gguf"},{"rfilename":"a-v2.gguf"}]}`,
			order:    hub.OrderVersion,
			expected: "a-v10.gguf",
		},
		{
			name:  "no gguf files",
			body:  `{"siblings":[{"rfilename":"README.md"},{"rfilename":"model.safetensors"}]}`,
			order: hub.OrderLexical,
			err:   errors.ErrNoArtifactFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHub(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}, hub.WithOrder(tt.order))

			got, err := c.FindLatest(context.Background(), "owner", "model")
			if tt.err != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestArtifactURL(t *testing.T) {
	c, err := hub.NewClient("https://huggingface.co")
	require.NoError(t, err)

	u := c.ArtifactURL("TheBloke", "Llama-2-7B-GGUF", "llama-2-7b.Q4_K_M.gguf")
	assert.Equal(t, "https://huggingface.co/TheBloke/Llama-2-7B-GGUF/resolve/main/llama-2-7b.Q4_K_M.gguf", u.String())

	nested := c.ArtifactURL("owner", "group/model", "file.gguf")
	assert.Equal(t, "/owner/group/model/resolve/main/file.gguf", nested.Path)
	assert.Equal(t, "/owner/group/model/resolve/main/file.gguf", nested.EscapedPath())

	mirror, err := hub.NewClient("https://mirror.test/hf/")
	require.NoError(t, err)
	u = mirror.ArtifactURL("owner", "model", "file.gguf")
	assert.Equal(t, "https://mirror.test/hf/owner/model/resolve/main/file.gguf", u.String())
	assert.Equal(t, "/hf/owner/model/resolve/main/file.gguf", u.Path)
}
