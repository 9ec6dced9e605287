package utils

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefaultLogger(LevelInfo, &buf)

	log.Debug("hidden %d", 1)
	log.Info("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden 1")
	assert.Contains(t, out, "shown 2")
	assert.Contains(t, out, "[INFO]")
}

func TestDefaultLogger_WithField(t *testing.T) {
	var buf bytes.Buffer
	log := NewDefaultLogger(LevelDebug, &buf)

	log.WithField("analysis", "top").Info("done")
	assert.Contains(t, buf.String(), "analysis=top")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLogLevel("debug"))
	assert.Equal(t, LevelWarn, ParseLogLevel("WARNING"))
	assert.Equal(t, LevelError, ParseLogLevel("error"))
	assert.Equal(t, LevelInfo, ParseLogLevel("bogus"))
}

func TestNullLogger(t *testing.T) {
	var log Logger = &NullLogger{}
	log.Debug("a")
	log.Info("b")
	assert.Equal(t, log, log.WithField("k", "v"))
}

func TestTimer(t *testing.T) {
	timer := StartTimer("parse")
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Elapsed(), time.Millisecond)

	var buf bytes.Buffer
	log := NewDefaultLogger(LevelDebug, &buf)
	timer.Stop(log)
	assert.Contains(t, buf.String(), "parse took")
}
