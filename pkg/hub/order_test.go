package hub

import (
	"testing"

	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		input    string
		expected Order
		wantErr  bool
	}{
		{input: "", expected: OrderLexical},
		{input: "lexical", expected: OrderLexical},
		{input: "VERSION", expected: OrderVersion},
		{input: "semver", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOrder(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, errors.ErrInvalidLatestOrder)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSelectLatest(t *testing.T) {
	tests := []struct {
		name     string
		names    []string
		order    Order
		expected string
	}{
		{
			name:     "single entry",
			names:    []string{"only.gguf"},
			order:    OrderLexical,
			expected: "only.gguf",
		},
		{
			name:     "lexical keeps string comparison",
			names:    []string{"a-v1.gguf", "a-v10.gguf", "a-v2.gguf"},
			order:    OrderLexical,
			expected: "a-v2.gguf",
		},
		{
			name:     "version with dotted components",
			names:    []string{"model-1.9.gguf", "model-1.10.gguf", "model-1.2.gguf"},
			order:    OrderVersion,
			expected: "model-1.10.gguf",
		},
		{
			name:     "unversioned names rank lower",
			names:    []string{"model-v3.gguf", "zzz.gguf"},
			order:    OrderVersion,
			expected: "model-v3.gguf",
		},
		{
			name:     "equal versions fall back to lexical",
			names:    []string{"m-v2-q4.gguf", "m-v2-q8.gguf"},
			order:    OrderVersion,
			expected: "m-v2-q8.gguf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SelectLatest(tt.names, tt.order)
			require.True(t, ok)
			assert.Equal(t, tt.expected, got)
		})
	}

	_, ok := SelectLatest(nil, OrderLexical)
	assert.False(t, ok)
}
