package logger

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ConsoleJSON(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(Config{Level: "debug", Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	log.Debug().Str("session_id", "7").Msg("saved")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "7", entry["session_id"])
	assert.Equal(t, "saved", entry["message"])
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(Config{Level: "warn", Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	log.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_InvalidLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer

	l, err := New(Config{Level: "loud", Console: &buf})
	require.NoError(t, err)
	defer l.Close()

	log.Debug().Msg("hidden")
	log.Info().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "agent.log")

	l, err := New(Config{Level: "info", File: path})
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}
