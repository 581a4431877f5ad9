package logging

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatbox-go/hatbox/pkg/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		raw     string
		want    slog.Level
		wantErr bool
	}{
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{" debug ", slog.LevelDebug, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.raw)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "info", "json")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = New(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestProtocolWritesCapture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.hlog")
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	plog, closeFn, err := Protocol(path, logger)
	require.NoError(t, err)
	plog.Log(log.Event{Timestamp: time.Now(), ConnectionID: "c1", Layer: log.LayerTransport})
	require.NoError(t, closeFn())

	r, err := log.NewReader(path)
	require.NoError(t, err)
	defer r.Close()
	ev, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "c1", ev.ConnectionID)
}

func TestProtocolDisabled(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	plog, closeFn, err := Protocol("", logger)
	require.NoError(t, err)
	assert.Equal(t, log.NoopLogger{}, plog)
	assert.NoError(t, closeFn())
}

func TestProtocolBadPath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	_, _, err := Protocol(filepath.Join(t.TempDir(), "missing", "x.hlog"), logger)
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvLogLevel, "debug")
	assert.True(t, FromEnv(slog.LevelWarn).Enabled(context.Background(), slog.LevelDebug))

	t.Setenv(EnvLogLevel, "")
	assert.False(t, FromEnv(slog.LevelWarn).Enabled(context.Background(), slog.LevelInfo))
}
