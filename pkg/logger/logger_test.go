package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewWithWriterHonoursLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn")

	log.Info("hidden")
	require.Zero(t, buf.Len())

	log.Warn("geocode fallback", "source", "fallback")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "geocode fallback", entry["msg"])
	require.Equal(t, "bazi-report", entry["service"])
	require.Equal(t, "fallback", entry["source"])
}
