package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainbow/internal/precompute"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{
			name:     "zero duration",
			duration: 0,
			want:     "0s",
		},
		{
			name:     "one second",
			duration: 1 * time.Second,
			want:     "1s",
		},
		{
			name:     "29 minutes 59 seconds",
			duration: 29*time.Minute + 59*time.Second,
			want:     "29m59s",
		},
		{
			name:     "159 minutes 59 seconds",
			duration: 159*time.Minute + 59*time.Second,
			want:     "159m59s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatElapsed(tt.duration)
			assert.Equal(t, tt.want, got, "formatElapsed should return expected format for %v", tt.duration)
		})
	}
}

func TestCollectRanges(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tmpDir := t.TempDir()
	rangeFile := filepath.Join(tmpDir, "ranges.csv")
	require.NoError(t, os.WriteFile(rangeFile, []byte("1;3\n9;5;5\n"), 0644))

	lit := precompute.Range{Start: 10, End: 20, Prefix: 4, GlobalPrefix: 1}

	tests := []struct {
		name    string
		paths   []string
		sep     string
		literal bool
		want    []precompute.Range
		wantErr error
	}{
		{
			name:    "literal only",
			literal: true,
			sep:     ",",
			want:    []precompute.Range{lit},
		},
		{
			name:  "file only",
			paths: []string{rangeFile},
			sep:   ";",
			want: []precompute.Range{
				{Start: 1, End: 3, GlobalPrefix: 1},
				{Start: 5, End: 5, Prefix: 9, GlobalPrefix: 1},
			},
		},
		{
			name:    "file then literal",
			paths:   []string{rangeFile},
			sep:     ";",
			literal: true,
			want: []precompute.Range{
				{Start: 1, End: 3, GlobalPrefix: 1},
				{Start: 5, End: 5, Prefix: 9, GlobalPrefix: 1},
				lit,
			},
		},
		{
			name:    "bad separator",
			paths:   []string{rangeFile},
			sep:     "::",
			wantErr: precompute.ErrBadSeparator,
		},
		{
			name:    "missing file",
			paths:   []string{filepath.Join(tmpDir, "nope.csv")},
			sep:     ",",
			wantErr: precompute.ErrNoSuchFile,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := collectRanges(tt.paths, tt.sep, 1, tt.literal, lit, logger)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
