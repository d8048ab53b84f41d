package hub

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/hashicorp/go-version"
)

// Order decides which artifact counts as the latest one.
type Order string

const (
	// OrderLexical picks the lexicographically greatest file name, so
	// "a-v2.gguf" wins over "a-v10.gguf".
	OrderLexical Order = "lexical"

	// OrderVersion compares the first version-looking token in each name.
	// Names without one rank below versioned names.
	OrderVersion Order = "version"
)

// ParseOrder validates s. An empty string selects OrderLexical.
func ParseOrder(s string) (Order, error) {
	switch Order(strings.ToLower(s)) {
	case "", OrderLexical:
		return OrderLexical, nil
	case OrderVersion:
		return OrderVersion, nil
	default:
		return "", fmt.Errorf("%q (want %s or %s): %w", s, OrderLexical, OrderVersion, errors.ErrInvalidLatestOrder)
	}
}

var versionToken = regexp.MustCompile(`(?i)v?(\d+(?:\.\d+)*)`)

// SelectLatest returns the greatest name under order. It reports false for
// an empty list.
func SelectLatest(names []string, order Order) (string, bool) {
	if len(names) == 0 {
		return "", false
	}
	best := names[0]
	for _, name := range names[1:] {
		if less(best, name, order) {
			best = name
		}
	}
	return best, true
}

func less(a, b string, order Order) bool {
	if order == OrderVersion {
		va, vb := extractVersion(a), extractVersion(b)
		switch {
		case va == nil && vb != nil:
			return true
		case va != nil && vb == nil:
			return false
		case va != nil && vb != nil:
			if c := va.Compare(vb); c != 0 {
				return c < 0
			}
		}
	}
	return a < b
}

func extractVersion(name string) *version.Version {
	m := versionToken.FindStringSubmatch(strings.TrimSuffix(name, ArtifactSuffix))
	if m == nil {
		return nil
	}
	v, err := version.NewVersion(m[1])
	if err != nil {
		return nil
	}
	return v
}
