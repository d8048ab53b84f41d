package cache

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
)

// Unknown labels listing fields of entries without a sidecar.
const Unknown = "unknown"

// DefaultManager implements the Manager interface for a single cache root.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// List returns the entries of the managed cache root.
func (cm *DefaultManager) List() ([]Listing, error) {
	return List(cm.directory)
}

// Remove deletes one entry. See RemoveEntry.
func (cm *DefaultManager) Remove(artifactPath string) (int64, error) {
	rel, err := filepath.Rel(cm.directory, artifactPath)
	if err != nil || rel != filepath.Base(artifactPath) {
		return 0, errors.Wrapf(errors.ErrInvalidPath, "%s is not inside %s", artifactPath, cm.directory)
	}
	return RemoveEntry(artifactPath)
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{Directory: cm.directory}

	size, files, err := fsutil.DirSize(cm.directory)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get cache info")
	}
	info.TotalSize = size
	info.Files = files

	for _, rec := range ReadAll(cm.directory) {
		info.Entries++
		if rec == nil {
			info.Unknown++
		}
	}
	return info, nil
}

// GetDirectory returns the cache directory path.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// SetDirectory sets the cache directory path.
func (cm *DefaultManager) SetDirectory(dir string) error {
	if dir == "" {
		return errors.ErrCacheDirectory
	}
	cm.directory = dir
	return nil
}

// List reads cacheRoot through its sidecars. It never writes. Known
// entries come first ordered by repository and file name; unknown entries
// follow ordered by id.
func List(cacheRoot string) ([]Listing, error) {
	if cacheRoot == "" {
		return nil, errors.ErrCacheDirectory
	}

	var out []Listing
	for id, rec := range ReadAll(cacheRoot) {
		path := filepath.Join(cacheRoot, id.FileName())
		l := Listing{ID: id, Path: path, RepoName: Unknown, FileName: Unknown}
		if size, ok := fsutil.FileSize(path); ok {
			l.Size = size
		}
		if rec != nil {
			l.Known = true
			l.RepoName = rec.RepoName
			l.FileName = rec.FileName
			l.Digest = rec.Digest
		}
		out = append(out, l)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Known != b.Known {
			return a.Known
		}
		if a.RepoName != b.RepoName {
			return a.RepoName < b.RepoName
		}
		if a.FileName != b.FileName {
			return a.FileName < b.FileName
		}
		return a.ID < b.ID
	})
	return out, nil
}

// RemoveEntry deletes an artifact together with its sidecar, validator and
// lock file and returns the number of bytes freed. Missing files are not an
// error.
func RemoveEntry(artifactPath string) (int64, error) {
	var freed int64
	for _, p := range []string{artifactPath, MetadataPath(artifactPath), ValidatorPath(artifactPath), LockPath(artifactPath)} {
		size, _ := fsutil.FileSize(p)
		if err := fsutil.RemoveIfExists(p); err != nil {
			return freed, err
		}
		freed += size
	}
	return freed, nil
}

// PurgeAll recursively deletes the config directory and the cache root.
// Absent directories are a no-op. The operation cannot be undone, so
// callers must obtain user confirmation first.
func PurgeAll(configDir, cacheRoot string) error {
	if configDir == "" {
		return errors.ErrConfigDirectory
	}
	if cacheRoot == "" {
		return errors.ErrCacheDirectory
	}
	for _, dir := range []string{configDir, cacheRoot} {
		if err := os.RemoveAll(dir); err != nil {
			return errors.Wrapf(err, "failed to remove %s", dir)
		}
	}
	return nil
}
