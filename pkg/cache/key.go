package cache

import (
	"crypto/md5" //nolint:gosec // naming only, not a security boundary
	"encoding/hex"
	"path/filepath"
	"strings"
)

// EntryID identifies a cache entry. It is the entry's file name without
// the artifact suffix, e.g. "ggufy-0cc175b9c0f1b6a831c399e269772661".
type EntryID string

// DeriveKey maps an (owner, collection, filename) triple to its entry id.
// The mapping is deterministic and includes the filename, so two files of
// the same repository never share an entry.
func DeriveKey(owner, collection, filename string) EntryID {
	sum := md5.Sum([]byte(owner + "/" + collection + "/" + filename)) //nolint:gosec
	return EntryID(KeyPrefix + hex.EncodeToString(sum[:]))
}

// FileName returns the artifact file name of the entry.
func (id EntryID) FileName() string {
	return string(id) + EntrySuffix
}

// ArtifactPath returns the absolute location of the triple inside cacheRoot.
func ArtifactPath(cacheRoot, owner, collection, filename string) string {
	return filepath.Join(cacheRoot, DeriveKey(owner, collection, filename).FileName())
}

// MetadataPath returns the sidecar path for an artifact path.
func MetadataPath(artifactPath string) string {
	return artifactPath + MetadataSuffix
}

// LockPath returns the lock file path for an artifact path.
func LockPath(artifactPath string) string {
	return artifactPath + LockSuffix
}

// ValidatorPath returns the partial download validator path for an
// artifact path.
func ValidatorPath(artifactPath string) string {
	return artifactPath + ValidatorSuffix
}

// ParseEntryName reports whether name follows the cache entry naming
// convention and returns its id.
func ParseEntryName(name string) (EntryID, bool) {
	if !strings.HasPrefix(name, KeyPrefix) || !strings.HasSuffix(name, EntrySuffix) {
		return "", false
	}
	digest := strings.TrimSuffix(strings.TrimPrefix(name, KeyPrefix), EntrySuffix)
	if len(digest) != hex.EncodedLen(md5.Size) {
		return "", false
	}
	if _, err := hex.DecodeString(digest); err != nil {
		return "", false
	}
	return EntryID(strings.TrimSuffix(name, EntrySuffix)), true
}
