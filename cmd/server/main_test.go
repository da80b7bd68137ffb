package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLogLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	require.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	require.Equal(t, slog.LevelError, parseLogLevel("error"))
	require.Equal(t, slog.LevelInfo, parseLogLevel(""))
	require.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLogFileWriter_TrimsToNewest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "server.log")
	w, file, err := newLogFileWriter(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = file.Close() })

	chunk := []byte(strings.Repeat("a", 1024*1024))
	for i := 0; i < 6; i++ {
		_, err := w.Write(chunk)
		require.NoError(t, err)
	}
	_, err = w.Write([]byte("tail-marker"))
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, keepLogSizeBytes)
	require.True(t, strings.HasSuffix(string(data), "tail-marker"))
}
