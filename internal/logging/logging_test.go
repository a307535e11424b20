package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/dbpeek/internal/config"
)

func TestLevelFromVerbosity(t *testing.T) {
	assert.Equal(t, "info", LevelFromVerbosity(0, "info"))
	assert.Equal(t, "debug", LevelFromVerbosity(1, "info"))
	assert.Equal(t, "trace", LevelFromVerbosity(2, "info"))
	assert.Equal(t, "trace", LevelFromVerbosity(5, "debug"))
}

func TestSetupConsoleOnly(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	closeFn := Setup(&buf, config.LogConfig{Level: "debug"})
	defer closeFn()

	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
	log.Debug().Str("table", "users").Msg("Read table")
	assert.Contains(t, buf.String(), "Read table")
	assert.Contains(t, buf.String(), "users")
}

func TestSetupWithFile(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	path := filepath.Join(t.TempDir(), "logs", "dbpeek.log")
	var buf bytes.Buffer
	closeFn := Setup(&buf, config.LogConfig{Level: "info", File: path, MaxSizeMB: 1})

	log.Info().Msg("Inspecting database")
	log.Debug().Msg("hidden at info")
	closeFn()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Inspecting database")
	assert.NotContains(t, string(data), "hidden at info")
	assert.Contains(t, buf.String(), "Inspecting database")
}
