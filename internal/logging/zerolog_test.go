package logging

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewConsole(&buf, "info")
	ctx := context.Background()

	log.Debug(ctx, "hidden")
	log.With("component", "store").Info(ctx, "store ready", "driver", "memory")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "store ready")
	assert.Contains(t, out, "driver=memory")
	assert.Contains(t, out, "component=store")
}

func TestZerologLevel(t *testing.T) {
	assert.Equal(t, "debug", zerologLevel(ParseLevel("debug")).String())
	assert.Equal(t, "warn", zerologLevel(ParseLevel("warning")).String())
	assert.Equal(t, "error", zerologLevel(ParseLevel("error")).String())
	assert.Equal(t, "info", zerologLevel(ParseLevel("bogus")).String())
}
