package fsutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDir(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T) string
		expectError bool
	}{
		{
			name: "creates nested directories",
			setup: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "parent", "child", "nested")
			},
		},
		{
			name: "succeeds when directory already exists",
			setup: func(t *testing.T) string {
				return t.TempDir()
			},
		},
		{
			name: "fails when a file is in the way",
			setup: func(t *testing.T) string {
				path := filepath.Join(t.TempDir(), "file")
				require.NoError(t, os.WriteFile(path, []byte("x"), FileModeDefault))
				return filepath.Join(path, "sub")
			},
			expectError: true,
		},
		{
			name:        "fails on empty path",
			setup:       func(*testing.T) string { return "" },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			err := EnsureDir(path, DirModeDefault)
			if tt.expectError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.DirExists(t, path)
		})
	}
}

func TestEnsureFileDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "a", "b", "config.yaml")
	require.NoError(t, EnsureFileDir(file, DirModePrivate))
	assert.DirExists(t, filepath.Dir(file))
	assert.NoFileExists(t, file)
}

func TestDirSize(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 10), FileModeDefault))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), DirModeDefault))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "b"), make([]byte, 5), FileModeDefault))

	size, count, err := DirSize(dir)
	require.NoError(t, err)
	assert.Equal(t, int64(15), size)
	assert.Equal(t, 2, count)

	size, count, err = DirSize(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Zero(t, size)
	assert.Zero(t, count)
}
