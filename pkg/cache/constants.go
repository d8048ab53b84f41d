package cache

import "github.com/glorpus-work/ggufy/pkg/fsutil"

const (
	// KeyPrefix namespaces every cache entry name.
	KeyPrefix = "ggufy-"

	// EntrySuffix is the extension of a cached artifact.
	EntrySuffix = ".gguf"

	// MetadataSuffix is appended to an artifact path to form its sidecar path.
	MetadataSuffix = ".meta.json"

	// LockSuffix is appended to an artifact path to form its lock file path.
	LockSuffix = ".lock"

	// ValidatorSuffix is appended to an artifact path to form the file
	// holding the HTTP validator of a partial download.
	ValidatorSuffix = ".etag"

	// CacheDirPerm is the permission mode for the cache root.
	CacheDirPerm = fsutil.DirModeDefault
)
