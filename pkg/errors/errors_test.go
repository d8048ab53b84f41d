package errors

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		msg      string
		expected string
	}{
		{
			name:     "wrap nil error",
			err:      nil,
			msg:      "additional context",
			expected: "",
		},
		{
			name:     "wrap standard error",
			err:      errors.New("original error"),
			msg:      "additional context",
			expected: "additional context: original error",
		},
		{
			name:     "wrap with empty message",
			err:      errors.New("original error"),
			msg:      "",
			expected: ": original error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Wrap(tt.err, tt.msg)
			if tt.err == nil {
				assert.NoError(t, result)
				return
			}
			assert.Equal(t, tt.expected, result.Error())
			assert.ErrorIs(t, result, tt.err)
		})
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(ErrArtifactNotFound, "fetching %s/%s", "owner", "file.gguf")
	require.Error(t, err)
	assert.Equal(t, "fetching owner/file.gguf: artifact not found", err.Error())
	assert.ErrorIs(t, err, ErrArtifactNotFound)
	assert.NoError(t, Wrapf(nil, "ignored %d", 1))
}

func TestNetwork(t *testing.T) {
	err := Network(context.DeadlineExceeded, "download failed")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, Network(nil, "noop"))
}

func TestHTTPStatusError(t *testing.T) {
	var err error = &HTTPStatusError{StatusCode: http.StatusNotFound, URL: "https://hf.co/x", Kind: ErrRepositoryNotFound}
	wrapped := Wrap(err, "lookup")

	assert.ErrorIs(t, wrapped, ErrRepositoryNotFound)
	assert.NotErrorIs(t, wrapped, ErrNetwork)
	assert.Equal(t, http.StatusNotFound, StatusCode(wrapped))
	assert.Contains(t, wrapped.Error(), "404")
	assert.Equal(t, 0, StatusCode(ErrNetwork))
}
