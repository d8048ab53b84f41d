// Package reference parses model references of the form
// "hf.co/owner/collection[:filename]".
package reference

import (
	"fmt"
	"strings"

	"github.com/glorpus-work/ggufy/pkg/errors"
)

const (
	// Host is the only repository host accepted in a reference.
	Host = "hf.co"

	// Latest is the filename placeholder meaning "pick the newest artifact".
	Latest = "latest"

	minSegments = 3
)

// Reference identifies an artifact in a remote repository. Filename is
// either a concrete file name or Latest.
type Reference struct {
	Owner      string
	Collection string
	Filename   string
}

// Parse splits text into a Reference. The text holds at most one ':'; an
// absent or empty file part selects Latest. The repository part must start
// with "hf.co" and carry at least an owner and a collection. Any further
// segments belong to the collection. "." and ".." path segments are
// rejected anywhere.
func Parse(text string) (Reference, error) {
	repoPart, filename, _ := strings.Cut(strings.TrimSpace(text), ":")
	if strings.Contains(filename, ":") {
		return Reference{}, fmt.Errorf("%q: more than one ':': %w", text, errors.ErrInvalidReferenceFormat)
	}
	if filename == "" {
		filename = Latest
	}

	segments := strings.Split(repoPart, "/")
	if len(segments) < minSegments || segments[0] != Host {
		return Reference{}, fmt.Errorf("%q: %w", text, errors.ErrInvalidReferenceFormat)
	}

	ref := Reference{
		Owner:      segments[1],
		Collection: strings.Join(segments[2:], "/"),
		Filename:   filename,
	}
	if ref.Owner == "" || strings.Trim(ref.Collection, "/") == "" {
		return Reference{}, fmt.Errorf("%q: %w", text, errors.ErrInvalidReferenceFormat)
	}
	if hasDotSegment(repoPart) || hasDotSegment(filename) {
		return Reference{}, fmt.Errorf("%q: relative path segment: %w", text, errors.ErrInvalidReferenceFormat)
	}
	return ref, nil
}

func hasDotSegment(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}

// IsLatest reports whether the reference still needs a remote lookup to
// select its file.
func (r Reference) IsLatest() bool {
	return r.Filename == Latest
}

// RepoName returns "owner/collection".
func (r Reference) RepoName() string {
	return r.Owner + "/" + r.Collection
}

// WithFilename returns a copy of r pinned to filename.
func (r Reference) WithFilename(filename string) Reference {
	r.Filename = filename
	return r
}

// String renders the canonical textual form. Parse(r.String()) == r.
func (r Reference) String() string {
	return Host + "/" + r.RepoName() + ":" + r.Filename
}

// Matches reports whether a recorded entry of repoName/filename is named by
// r. A latest reference matches every file of its repository.
func (r Reference) Matches(repoName, filename string) bool {
	if repoName != r.RepoName() {
		return false
	}
	return r.IsLatest() || filename == r.Filename
}
