// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pdiddy/nutrition-align/pkg/types"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Output: &buf})
	require.NoError(t, err)

	log.Debug("aligned", zap.String("stage", "stage1b_direct_raw"))
	require.NoError(t, log.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "debug", line["level"])
	assert.Equal(t, "aligned", line["msg"])
	assert.Equal(t, "stage1b_direct_raw", line["stage"])
	assert.Contains(t, line, "ts")
}

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "warn", Output: &buf})
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewUnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "loud", Output: &buf})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(FromRuntime(types.LoggingConfig{Level: "info", Format: "console"}))
	require.NoError(t, err)
	require.NotNil(t, log)

	log, err = New(Config{Format: "console", Output: &buf})
	require.NoError(t, err)
	log.Info("catalogue ready", zap.Int("entries", 13))
	assert.Contains(t, buf.String(), "INFO")
	assert.Contains(t, buf.String(), "catalogue ready")
	assert.Contains(t, buf.String(), `"entries": 13`)
}
