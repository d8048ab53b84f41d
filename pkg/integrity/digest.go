// Package integrity checks downloaded artifacts against the digest the hub
// advertises for them.
package integrity

import (
	"crypto/md5"  //nolint:gosec // matches hub ETags, not used for security
	"crypto/sha1" //nolint:gosec // git blob ids are sha1
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/glorpus-work/ggufy/pkg/errors"
)

// Algorithm names a digest function.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmNone    Algorithm = ""
	AlgorithmSHA256  Algorithm = "sha256"
	AlgorithmGitSHA1 Algorithm = "git-sha1"
	AlgorithmMD5     Algorithm = "md5"
)

// Digest is an expected content digest. Value is lowercase hex.
type Digest struct {
	Algorithm Algorithm
	Value     string
}

// IsZero reports whether no usable digest is present.
func (d Digest) IsZero() bool {
	return d.Algorithm == AlgorithmNone || d.Value == ""
}

func (d Digest) String() string {
	if d.IsZero() {
		return ""
	}
	return string(d.Algorithm) + ":" + d.Value
}

// ParseDigest classifies a raw ETag value. Weak markers and quotes are
// stripped; the algorithm is chosen by hex length. Values that are not
// hex of a known length yield the zero Digest.
func ParseDigest(raw string) Digest {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "W/")
	v = strings.ToLower(strings.Trim(v, `"`))
	if v == "" {
		return Digest{}
	}
	if _, err := hex.DecodeString(v); err != nil {
		return Digest{}
	}

	switch len(v) {
	case sha256.Size * 2:
		return Digest{Algorithm: AlgorithmSHA256, Value: v}
	case sha1.Size * 2:
		return Digest{Algorithm: AlgorithmGitSHA1, Value: v}
	case md5.Size * 2:
		return Digest{Algorithm: AlgorithmMD5, Value: v}
	default:
		return Digest{}
	}
}

// ParseRecorded parses the "algorithm:hex" form produced by Digest.String.
func ParseRecorded(s string) Digest {
	alg, value, ok := strings.Cut(s, ":")
	if !ok {
		return ParseDigest(s)
	}
	d := Digest{Algorithm: Algorithm(alg), Value: strings.ToLower(value)}
	switch d.Algorithm {
	case AlgorithmSHA256, AlgorithmGitSHA1, AlgorithmMD5:
		return d
	default:
		return Digest{}
	}
}

func newHash(alg Algorithm, size int64) (hash.Hash, error) {
	switch alg {
	case AlgorithmSHA256:
		return sha256.New(), nil
	case AlgorithmMD5:
		return md5.New(), nil //nolint:gosec
	case AlgorithmGitSHA1:
		h := sha1.New() //nolint:gosec
		_, _ = io.WriteString(h, "blob "+strconv.FormatInt(size, 10)+"\x00")
		return h, nil
	default:
		return nil, fmt.Errorf("unsupported digest algorithm %q", alg)
	}
}

// Compute hashes the file at path with alg.
func Compute(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrap(err, "open for digest")
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return "", errors.Wrap(err, "stat for digest")
	}
	h, err := newHash(alg, info.Size())
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrap(err, "hashing")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
