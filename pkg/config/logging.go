package config

import (
	"io"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// NewLogger builds a logrus logger from c. Output goes to fallback unless a
// log file is configured, in which case it is rotated by lumberjack. verbose
// forces debug level. The returned closer releases the log file.
func (c LogConfig) NewLogger(fallback io.Writer, verbose bool) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = logrus.DebugLevel
	}

	log := logrus.New()
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05.000",
	})

	if c.File == "" {
		log.SetOutput(fallback)
		return log, nopCloser{}, nil
	}

	rotator := &lumberjack.Logger{
		Filename:   c.File,
		MaxSize:    c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
	}
	log.SetOutput(rotator)
	log.SetFormatter(&logrus.JSONFormatter{})

	return log, rotator, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
