package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"backtest-playback/internal/playback"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, playback.DefaultWindowSize, c.Playback.WindowSize)
	assert.Equal(t, 40*time.Millisecond, c.Playback.BaseFrameDelay)
	assert.Equal(t, 2000, c.Backend.NumCandles)
	assert.Equal(t, "/backtest", c.Backend.Path)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeFile(t, "config.yaml", `
server:
  port: "9090"
backend:
  url: http://backtester:5000
  num_candles: 500
  timeout: 5s
playback:
  window_size: 120
  base_frame_delay: 20ms
  speeds:
    active_trade_speed: 4
    general_speed: 2
logging:
  level: debug
  format: json
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Server.Port)
	assert.Equal(t, "http://backtester:5000", c.Backend.URL)
	assert.Equal(t, 500, c.Backend.NumCandles)
	assert.Equal(t, 5*time.Second, c.Backend.Timeout)
	assert.Equal(t, 120, c.Playback.WindowSize)
	assert.Equal(t, 20*time.Millisecond, c.Playback.BaseFrameDelay)
	assert.Equal(t, playback.Speeds{ActiveTrade: 4, General: 2}, c.Playback.Speeds)
	assert.Equal(t, "json", c.Logging.Format)
	assert.Equal(t, "/backtest", c.Backend.Path, "unset keys keep their default")
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.yaml", "server:\n  port: \"9090\"\n")
	t.Setenv("API_PORT", "7070")
	t.Setenv("BACKTEST_URL", "http://env:5000")
	t.Setenv("NUM_CANDLES", "300")
	t.Setenv("LOG_LEVEL", "warn")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "7070", c.Server.Port)
	assert.Equal(t, "http://env:5000", c.Backend.URL)
	assert.Equal(t, 300, c.Backend.NumCandles)
	assert.Equal(t, "warn", c.Logging.Level)

	t.Setenv("NUM_CANDLES", "many")
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadPlayback(t *testing.T) {
	c := Default()
	c.Playback.Speeds.General = 0
	assert.ErrorIs(t, c.Validate(), playback.ErrInvalidSpeed)

	c = Default()
	c.Playback.WindowSize = 0
	assert.Error(t, c.Validate())

	path := writeFile(t, "bad.yaml", "playback:\n  base_frame_delay: -1s\n")
	_, err := Load(path)
	assert.Error(t, err)

	unchecked, err := LoadUnchecked(path)
	require.NoError(t, err)
	assert.Equal(t, -time.Second, unchecked.Playback.BaseFrameDelay)
}

func TestLoadDotEnv(t *testing.T) {
	path := writeFile(t, ".env", "BACKTEST_URL=http://dotenv:5000\n")
	os.Unsetenv("BACKTEST_URL")
	t.Cleanup(func() { os.Unsetenv("BACKTEST_URL") })

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))
	assert.Equal(t, "http://dotenv:5000", os.Getenv("BACKTEST_URL"))

	assert.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "none.env")))
}
