package logger

import (
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"gopkg.in/natefinch/lumberjack.v2"
)

func TestFormatter(t *testing.T) {
	assert.IsType(t, &log.JSONFormatter{}, Formatter("json"))
	assert.IsType(t, &log.TextFormatter{}, Formatter("text"))
	assert.IsType(t, &log.TextFormatter{}, Formatter(""))
}

func TestOutput(t *testing.T) {
	assert.Equal(t, os.Stdout, Output(""))

	path := filepath.Join(t.TempDir(), "irini.log")
	out, ok := Output(path).(*lumberjack.Logger)
	assert.True(t, ok)
	assert.Equal(t, path, out.Filename)
}

func TestSetup(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	defer log.SetLevel(log.InfoLevel)

	assert.Error(t, Setup(Options{Level: "chatty"}))
	assert.NoError(t, Setup(Options{Level: "debug", Format: "json"}))
	assert.Equal(t, log.DebugLevel, log.GetLevel())
}
