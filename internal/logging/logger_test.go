package logging_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AI-multimodal/aimm-adapteres/internal/logging"
)

func TestBufferedHandler(t *testing.T) {
	h := logging.NewBufferedHandler(slog.LevelInfo)
	log := slog.New(h).With("file", "a.001")

	log.Debug("dropped")
	log.Info("parsed", "rows", 3)
	log.WithGroup("diag").Warn("odd fragment", "line", 7)

	assert.Equal(t, []string{
		"INFO parsed file=a.001 rows=3",
		"WARN odd fragment file=a.001 diag.line=7",
	}, h.Lines())
	assert.True(t, h.Contains("odd fragment"))
}

func TestParseLevel(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
	} {
		t.Run(tc.in, func(t *testing.T) {
			lvl, err := logging.ParseLevel(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, lvl)
		})
	}

	_, err := logging.ParseLevel("loud")
	assert.Error(t, err)
}

func TestDefaultLoggerDiscards(t *testing.T) {
	logging.SetLogger(nil)
	assert.False(t, logging.Logger().Enabled(context.Background(), slog.LevelError))
}
