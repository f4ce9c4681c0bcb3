package logger

import (
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Options struct {
	Level  string
	Format string // text or json
	Path   string // stdout when empty
}

func Setup(opts Options) error {
	level, err := log.ParseLevel(opts.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	log.SetOutput(Output(opts.Path))
	log.SetFormatter(Formatter(opts.Format))
	return nil
}

func Output(path string) io.Writer {
	if path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    32, // megabytes
		MaxBackups: 2,
		MaxAge:     28, //days
		Compress:   true,
	}
}

func Formatter(format string) log.Formatter {
	if format == "json" {
		return &log.JSONFormatter{TimestampFormat: time.RFC3339}
	}
	return &log.TextFormatter{
		PadLevelText:    true,
		DisableColors:   true,
		FullTimestamp:   true,
		TimestampFormat: time.DateTime,
	}
}
