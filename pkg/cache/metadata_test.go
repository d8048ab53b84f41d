package cache_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glorpus-work/ggufy/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEntry(t *testing.T, root, owner, collection, filename, content string, withSidecar bool) string {
	t.Helper()
	path := cache.ArtifactPath(root, owner, collection, filename)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	if withSidecar {
		require.NoError(t, cache.WriteMetadata(path, cache.Record{
			RepoName: owner + "/" + collection,
			FileName: filename,
			Size:     int64(len(content)),
		}))
	}
	return path
}

func TestWriteReadMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), cache.DeriveKey("o", "c", "f.gguf").FileName())
	require.NoError(t, os.WriteFile(path, []byte("gguf"), 0o644))

	rec, ok, err := cache.ReadMetadata(path)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, rec)
	assert.False(t, cache.HasMetadata(path))

	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	want := cache.Record{RepoName: "o/c", FileName: "f.gguf", Digest: "abc", Size: 4, DownloadedAt: now}
	require.NoError(t, cache.WriteMetadata(path, want))

	rec, ok, err = cache.ReadMetadata(path)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.RepoName, rec.RepoName)
	assert.Equal(t, want.FileName, rec.FileName)
	assert.Equal(t, want.Digest, rec.Digest)
	assert.Equal(t, want.Size, rec.Size)
	assert.True(t, want.DownloadedAt.Equal(rec.DownloadedAt))
	assert.True(t, cache.HasMetadata(path))

	raw, err := os.ReadFile(cache.MetadataPath(path))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"repo_name": "o/c"`)
	assert.Contains(t, string(raw), `"file_name": "f.gguf"`)
}

func TestReadMetadata_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.gguf")
	require.NoError(t, os.WriteFile(cache.MetadataPath(path), []byte("{not json"), 0o644))

	_, ok, err := cache.ReadMetadata(path)
	require.Error(t, err)
	assert.True(t, ok)
}

func TestReadAll(t *testing.T) {
	root := t.TempDir()
	writeEntry(t, root, "o", "a", "a.gguf", "aaaa", true)
	writeEntry(t, root, "o", "b", "b.gguf", "bb", true)
	writeEntry(t, root, "o", "c", "partial.gguf", "p", false)
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "other.gguf"), []byte("x"), 0o644))

	records := map[cache.EntryID]*cache.Record{}
	for id, rec := range cache.ReadAll(root) {
		records[id] = rec
	}

	require.Len(t, records, 3)
	assert.Equal(t, "o/a", records[cache.DeriveKey("o", "a", "a.gguf")].RepoName)
	assert.Equal(t, "b.gguf", records[cache.DeriveKey("o", "b", "b.gguf")].FileName)

	partial, ok := records[cache.DeriveKey("o", "c", "partial.gguf")]
	assert.True(t, ok)
	assert.Nil(t, partial)
}

func TestReadAll_StopsEarly(t *testing.T) {
	root := t.TempDir()
	for _, f := range []string{"1.gguf", "2.gguf", "3.gguf"} {
		writeEntry(t, root, "o", "c", f, f, true)
	}

	count := 0
	for range cache.ReadAll(root) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestReadAll_MissingRoot(t *testing.T) {
	count := 0
	for range cache.ReadAll(filepath.Join(t.TempDir(), "missing")) {
		count++
	}
	assert.Zero(t, count)
}
