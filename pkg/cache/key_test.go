package cache_test

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey(t *testing.T) {
	tests := []struct {
		owner, collection, filename string
		expected                    cache.EntryID
	}{
		{
			owner:      "TheBloke",
			collection: "Llama-2-7B-GGUF",
			filename:   "llama-2-7b.Q4_K_M.gguf",
			expected:   "ggufy-c5f028e7ed28ce31947eba32b991d795",
		},
		{
			owner:      "a",
			collection: "b",
			filename:   "c",
			expected:   "ggufy-cff49f359f080f71548fcee824af6ad3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.owner+"/"+tt.collection, func(t *testing.T) {
			id := cache.DeriveKey(tt.owner, tt.collection, tt.filename)
			assert.Equal(t, tt.expected, id)
			assert.Equal(t, id, cache.DeriveKey(tt.owner, tt.collection, tt.filename))
			assert.Equal(t, string(tt.expected)+".gguf", id.FileName())
		})
	}
}

func TestDeriveKey_NoCollisions(t *testing.T) {
	const n = 10000
	seen := make(map[cache.EntryID]string, n)
	for i := 0; i < n; i++ {
		owner := fmt.Sprintf("owner%d", i%37)
		collection := fmt.Sprintf("collection%d", i%101)
		filename := fmt.Sprintf("model-%d.Q4_K_M.gguf", i)
		triple := owner + "/" + collection + "/" + filename

		id := cache.DeriveKey(owner, collection, filename)
		if prev, ok := seen[id]; ok {
			t.Fatalf("collision between %q and %q", prev, triple)
		}
		seen[id] = triple
	}
	assert.Len(t, seen, n)
}

func TestDeriveKey_FilenameMatters(t *testing.T) {
	q4 := cache.DeriveKey("owner", "model", "model-q4.gguf")
	q8 := cache.DeriveKey("owner", "model", "model-q8.gguf")
	assert.NotEqual(t, q4, q8)
}

func TestPaths(t *testing.T) {
	root := t.TempDir()
	p := cache.ArtifactPath(root, "owner", "model", "file.gguf")

	assert.Equal(t, root, filepath.Dir(p))
	assert.Equal(t, cache.DeriveKey("owner", "model", "file.gguf").FileName(), filepath.Base(p))
	assert.Equal(t, p+".meta.json", cache.MetadataPath(p))
	assert.Equal(t, p+".lock", cache.LockPath(p))
}

func TestParseEntryName(t *testing.T) {
	valid := cache.DeriveKey("o", "c", "f.gguf")

	tests := []struct {
		name  string
		input string
		ok    bool
	}{
		{name: "derived entry", input: valid.FileName(), ok: true},
		{name: "sidecar", input: cache.MetadataPath(valid.FileName())},
		{name: "lock", input: cache.LockPath(valid.FileName())},
		{name: "foreign gguf", input: "llama.gguf"},
		{name: "short digest", input: "ggufy-abc.gguf"},
		{name: "non hex digest", input: "ggufy-" + strings.Repeat("z", 32) + ".gguf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := cache.ParseEntryName(tt.input)
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, valid, id)
			}
		})
	}
}
