// Package logging builds the log sink of one process run.
package logging

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/filecheck/internal/config"
	"github.com/fjglira/filecheck/internal/domain"
)

// Sink is a logger tagged with the id of the current run. It is created
// once per process and closed on exit.
type Sink struct {
	*logrus.Entry
	RunID string
	file  *os.File
}

// New opens the log file named in cfg, truncating it. An empty file name
// discards everything and "-" logs to stderr.
func New(cfg config.LoggingConfig) (*Sink, error) {
	level := logrus.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = logrus.ParseLevel(cfg.Level)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("config", "", 0, "invalid log level",
				"use one of debug, info, warn, error", err)
		}
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	})

	s := &Sink{RunID: uuid.NewString()}
	switch cfg.File {
	case "":
		logger.SetOutput(io.Discard)
	case "-":
		logger.SetOutput(os.Stderr)
	default:
		f, err := os.Create(cfg.File)
		if err != nil {
			return nil, domain.NewErrorWithSuggestion("config", cfg.File, 0, "failed to open log file",
				"set logging.file in filecheck.yaml or pass --log-file", err)
		}
		logger.SetOutput(f)
		s.file = f
	}

	s.Entry = logger.WithField("run_id", s.RunID)
	return s, nil
}

// Close flushes and closes the log file, if any.
func (s *Sink) Close() error {
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}
