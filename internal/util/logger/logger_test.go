package logger

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("logger-test")
	log.Info("test message", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "test message")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "subsystem=logger-test")
	assert.Contains(t, out, "level=info")
}

func TestSetOutput_ExistingLogger(t *testing.T) {
	log := Logger("logger-test-existing")

	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log.Info("after switch")
	assert.Contains(t, buf.String(), "after switch")
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)
	defer SetOutput(os.Stderr)

	log := Logger("logger-test-level").With("peer", "abc")
	SetLevel("logger-test-level", slog.LevelWarn)

	log.Info("hidden")
	log.Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "peer=abc")
}

func TestLogger_Cached(t *testing.T) {
	assert.Same(t, Logger("logger-test-cache"), Logger("logger-test-cache"))
}

func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("holepunch=debug, pathselect=warn ,error", "JSON", "true")

	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelFor("holepunch"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelFor("pathselect"))
	assert.Equal(t, slog.LevelError, cfg.LevelFor("metrics"))
	assert.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg := ParseConfig("", "", "")

	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Equal(t, FormatText, cfg.Format)
	assert.False(t, cfg.AddSource)

	// 无法识别的级别被忽略
	cfg = ParseConfig("bogus,x=nope", "", "")
	assert.Equal(t, slog.LevelInfo, cfg.DefaultLevel)
	assert.Empty(t, cfg.Subsystems)
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
	assert.False(t, log.Enabled(context.Background(), slog.LevelError))
}
