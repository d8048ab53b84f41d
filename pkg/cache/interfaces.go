package cache

// Manager defines the cache lifecycle operations used by the CLI.
type Manager interface {
	List() ([]Listing, error)
	Remove(artifactPath string) (int64, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	SetDirectory(dir string) error
}

// Listing is one row of a cache listing. Known is false when the entry
// has no readable sidecar; RepoName and FileName are then "unknown".
type Listing struct {
	ID       EntryID
	RepoName string
	FileName string
	Path     string
	Size     int64
	Digest   string
	Known    bool
}

// Info summarizes the cache directory.
type Info struct {
	Directory string
	TotalSize int64
	Files     int
	Entries   int
	Unknown   int
}
