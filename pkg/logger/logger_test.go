package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerCarriesContextFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "posbilling", Level: zerolog.DebugLevel, Output: &buf})

	ctx := l.WithRequestID(context.Background(), "req-1")
	ctx = l.WithFields(ctx, map[string]any{"purchase_id": "p-9"})
	l.Info(ctx, "checkout committed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "posbilling", entry["service"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "p-9", entry["purchase_id"])
	assert.Equal(t, "checkout committed", entry["message"])
}

func TestLoggerErrorIncludesStack(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{ServiceName: "posbilling", Output: &buf})

	l.Error(context.Background(), "smtp send failed", errors.New("dial tcp: timeout"))

	out := buf.String()
	assert.Contains(t, out, `"error":"dial tcp: timeout"`)
	assert.Contains(t, out, `"stack"`)
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: zerolog.WarnLevel, Output: &buf})

	l.Info(context.Background(), "hidden")
	l.Warn(context.Background(), "shown")

	assert.False(t, strings.Contains(buf.String(), "hidden"))
	assert.True(t, strings.Contains(buf.String(), "shown"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel(" DEBUG "))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("loud"))
}
