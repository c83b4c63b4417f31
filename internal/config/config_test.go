package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "./data", c.DataDir)
	assert.Equal(t, []string{"scroll down", "scroll up", "next note", "prev note", "zoom in", "zoom out"}, c.Classes)
	assert.Equal(t, 200, c.SamplesPerClass)
	assert.Equal(t, 0.2, c.TestFraction)
	assert.Equal(t, 100, c.Trees)
	assert.Equal(t, int64(0), c.Seed)
	assert.Equal(t, 0.3, c.MinConfidence)
	assert.Equal(t, 800*time.Millisecond, c.FrameInterval)
	assert.True(t, c.ShowWindow)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("GESTURENOTE_CLASSES", "a,b")
	t.Setenv("GESTURENOTE_SEED", "42")
	t.Setenv("GESTURENOTE_FRAME_INTERVAL", "100ms")
	t.Setenv("GESTURENOTE_SHOW_WINDOW", "false")

	c, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, c.Classes)
	assert.Equal(t, int64(42), c.Seed)
	assert.Equal(t, 100*time.Millisecond, c.FrameInterval)
	assert.False(t, c.ShowWindow)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"GESTURENOTE_TEST_FRACTION":            "1",
		"GESTURENOTE_TREES":                    "0",
		"GESTURENOTE_SAMPLES_PER_CLASS":        "-1",
		"GESTURENOTE_MIN_DETECTION_CONFIDENCE": "2",
		"GESTURENOTE_CAMERA_ID":                "front",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestResolveDBPath(t *testing.T) {
	dir := t.TempDir()
	c := &Config{DBPath: filepath.Join(dir, "nested", "g.db")}

	path, err := c.ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, c.DBPath, path)
	assert.DirExists(t, filepath.Join(dir, "nested"))

	t.Setenv("HOME", dir)
	path, err = (&Config{}).ResolveDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ".gesturenote", "gesturenote.db"), path)
}

func TestSetupLogging(t *testing.T) {
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	var buf bytes.Buffer
	require.NoError(t, setupLogging(&buf, "warn", "json"))
	log.Info().Msg("hidden")
	log.Warn().Str("class", "zoom in").Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"class":"zoom in"`)

	assert.Error(t, setupLogging(&buf, "loud", "json"))
	assert.Error(t, setupLogging(&buf, "info", "xml"))
}
