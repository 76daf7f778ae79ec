package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := NewLogger(LoggerConfig{Level: "debug", OutputPath: path, Format: "json"})
	require.NoError(t, err)

	logger.Info("Application submitted")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"Application submitted"`)
	assert.Contains(t, string(data), `"timestamp"`)
}

func TestNewLogger_UnknownLevelFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(LoggerConfig{Level: "loud", OutputPath: "stderr", Format: "console"})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))
	assert.True(t, logger.Core().Enabled(0))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("john.mukasa@goldcharp.co.ug"))
	assert.Error(t, ValidateEmail("john@"))
	assert.Error(t, ValidateEmail("not an email"))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "income\ttoo low\nsee file", SanitizeString("  income\ttoo\x00 low\nsee file\x7f "))
}
