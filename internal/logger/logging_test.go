package logger

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
)

func TestNewWithConfig(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithConfig(&buf, "keypad", log.InfoLevel, false, false, log.JSONFormatter)

	l.Debug("hidden")
	l.Info("shown", "key", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "keypad")
}

func TestSetup(t *testing.T) {
	prev := log.GetLevel()
	defer log.SetLevel(prev)

	Setup(true)
	assert.Equal(t, log.DebugLevel, log.GetLevel())

	Setup(false)
	assert.Equal(t, log.WarnLevel, log.GetLevel())
}
