package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kartoza/crop-advisor/internal/config"
)

func TestNewWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "advisor.log")
	cfg := config.Default().Logging
	cfg.File = path
	cfg.Level = "debug"

	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("hello from test")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestNewRejectsBadSettings(t *testing.T) {
	cfg := config.Default().Logging

	cfg.Level = "loud"
	_, err := New(cfg)
	assert.Error(t, err)

	cfg.Level = "info"
	cfg.Format = "xml"
	_, err = New(cfg)
	assert.Error(t, err)
}
