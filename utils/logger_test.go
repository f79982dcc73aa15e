package utils

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogger(WARN, &buf)

	l.Debug("debug %d", 1)
	l.Info("info %d", 2)
	l.Warn("warn %d", 3)
	l.Error("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARN]")
	assert.Contains(t, out, "warn 3")
	assert.Contains(t, out, "[ERROR]")
	assert.Contains(t, out, "run="+l.RunID())
	assert.Len(t, l.RunID(), 8)

	buf.Reset()
	l.SetLevel(DEBUG)
	l.Debug("now visible")
	assert.True(t, strings.Contains(buf.String(), "now visible"))
}

func TestParseLogLevel(t *testing.T) {
	lvl, err := ParseLogLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, DEBUG, lvl)

	lvl, err = ParseLogLevel("Error")
	require.NoError(t, err)
	assert.Equal(t, ERROR, lvl)

	_, err = ParseLogLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}
