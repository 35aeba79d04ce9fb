package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyLevelAndFormat(t *testing.T) {
	logger := log.New()
	var out bytes.Buffer

	closer, err := apply(logger, Options{Level: "warn", Format: "json"}, &out)
	require.NoError(t, err)
	defer closer.Close()

	logger.Info("hidden")
	logger.WithField("cursor", 301).Warn("shown")

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"cursor":301`)
	assert.Equal(t, log.WarnLevel, logger.GetLevel())
}

func TestApplyRejectsBadOptions(t *testing.T) {
	_, err := apply(log.New(), Options{Level: "loud"}, &bytes.Buffer{})
	assert.Error(t, err)

	_, err = apply(log.New(), Options{Format: "xml"}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestApplyWritesToRotatingFile(t *testing.T) {
	logger := log.New()
	var out bytes.Buffer
	path := filepath.Join(t.TempDir(), "logs", "playback.log")

	closer, err := apply(logger, Options{File: path}, &out)
	require.NoError(t, err)

	logger.Info("playback: started")
	require.NoError(t, closer.Close())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "playback: started")
	assert.Contains(t, out.String(), "playback: started")
}
