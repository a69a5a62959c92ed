package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel(" warn "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}

func TestNewWritesFileAndConsole(t *testing.T) {
	dir := t.TempDir()
	on := true
	var console bytes.Buffer

	opts := DefaultOptions()
	opts.Dir = dir
	opts.Console = &on
	logger, closer, err := New(opts, &console)
	require.NoError(t, err)

	logger.Info().Str("status", "focused").Msg("Status changed")
	logger.Debug().Msg("hidden at info")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(filepath.Join(dir, "aura.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"status":"focused"`)
	assert.NotContains(t, string(data), "hidden at info")
	assert.Contains(t, console.String(), "Status changed")
}

func TestNewWithoutSinks(t *testing.T) {
	off := false
	opts := Options{Console: &off}
	logger, closer, err := New(opts, &bytes.Buffer{})
	require.NoError(t, err)
	assert.NotPanics(t, func() { logger.Info().Msg("dropped") })
	assert.NoError(t, closer.Close())
}

func TestConsoleAutoDetectSkipsBuffers(t *testing.T) {
	assert.False(t, wantConsole(Options{}, &bytes.Buffer{}))
	assert.False(t, wantConsole(Options{}, nil))
}
