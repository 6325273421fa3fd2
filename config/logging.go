package config

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/wb-go/wbf/zlog"
)

const defaultLogFile = "logs/job-board-api.log"

// LogWriter receives gin access logs, gorm SQL logs and the standard logger.
var LogWriter io.Writer = os.Stdout

// Logging is the open log sink. Close it on shutdown.
type Logging struct {
	File   *os.File
	Writer io.Writer
}

func (l *Logging) Close() error {
	if l == nil || l.File == nil {
		return nil
	}
	return l.File.Close()
}

// LogFilePath returns LOG_FILE, or logs/job-board-api.log when unset.
func LogFilePath() string {
	if p := os.Getenv("LOG_FILE"); p != "" {
		return p
	}
	return filepath.FromSlash(defaultLogFile)
}

// InitLogging starts zlog for services and workers and tees the plain
// loggers to stdout and the log file. A missing file only downgrades to stdout.
func InitLogging() *Logging {
	zlog.Init()

	path := LogFilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		zlog.Logger.Warn().Err(err).Str("path", path).Msg("log directory unavailable, logging to stdout only")
		return useWriter(nil)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		zlog.Logger.Warn().Err(err).Str("path", path).Msg("log file unavailable, logging to stdout only")
		return useWriter(nil)
	}
	return useWriter(f)
}

func useWriter(f *os.File) *Logging {
	LogWriter = os.Stdout
	if f != nil {
		LogWriter = io.MultiWriter(os.Stdout, f)
	}
	log.SetOutput(LogWriter)
	return &Logging{File: f, Writer: LogWriter}
}
