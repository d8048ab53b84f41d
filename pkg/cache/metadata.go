package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"os"
	"path/filepath"
	"time"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/fsutil"
)

// Record is the sidecar stored next to every completed artifact.
type Record struct {
	RepoName     string    `json:"repo_name"`
	FileName     string    `json:"file_name"`
	Digest       string    `json:"digest,omitempty"`
	Size         int64     `json:"size,omitempty"`
	DownloadedAt time.Time `json:"downloaded_at,omitzero"`
}

// WriteMetadata atomically stores rec as the sidecar of artifactPath.
func WriteMetadata(artifactPath string, rec Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", errors.ErrMetadataWrite, err)
	}
	if err := fsutil.WriteFileAtomic(MetadataPath(artifactPath), data, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrMetadataWrite, err)
	}
	return nil
}

// ReadMetadata loads the sidecar of artifactPath. The boolean is false when
// no sidecar exists.
func ReadMetadata(artifactPath string) (*Record, bool, error) {
	data, err := os.ReadFile(MetadataPath(artifactPath))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to read metadata for %s", artifactPath)
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, true, errors.Wrapf(err, "failed to decode metadata for %s", artifactPath)
	}
	return &rec, true, nil
}

// HasMetadata reports whether artifactPath has a sidecar.
func HasMetadata(artifactPath string) bool {
	return fsutil.FileExists(MetadataPath(artifactPath))
}

const readAllBatch = 64

// ReadAll lazily yields every cache entry in cacheRoot with its record.
// Entries whose sidecar is missing or unreadable are yielded with a nil
// record. A missing cacheRoot yields nothing.
func ReadAll(cacheRoot string) iter.Seq2[EntryID, *Record] {
	return func(yield func(EntryID, *Record) bool) {
		dir, err := os.Open(cacheRoot)
		if err != nil {
			return
		}
		defer func() { _ = dir.Close() }()

		for {
			entries, err := dir.ReadDir(readAllBatch)
			for _, e := range entries {
				if !e.Type().IsRegular() {
					continue
				}
				id, ok := ParseEntryName(e.Name())
				if !ok {
					continue
				}
				rec, _, readErr := ReadMetadata(filepath.Join(cacheRoot, e.Name()))
				if readErr != nil {
					rec = nil
				}
				if !yield(id, rec) {
					return
				}
			}
			if err == io.EOF || len(entries) == 0 {
				return
			}
			if err != nil {
				return
			}
		}
	}
}
