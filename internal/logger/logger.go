// Package logger configures a process-wide structured logger. Hook commands
// log to file only; their stdout carries the decision protocol and stderr
// noise would confuse the calling agent.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

var defaultLogger *slog.Logger

// logFilePath determines the application log file path per the XDG spec.
func logFilePath() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		stateDir = filepath.Join(homeDir, ".local", "state")
	}
	return filepath.Join(stateDir, "cct", "cct.log"), nil
}

// Init configures the default logger. fileOnly suppresses stderr output for
// commands whose stdout/stderr are a protocol surface.
func Init(fileOnly bool) {
	var writers []io.Writer

	if path, err := logFilePath(); err == nil {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err == nil {
			if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err == nil {
				writers = append(writers, f)
			}
		}
	}

	if !fileOnly {
		writers = append(writers, os.Stderr)
	}

	var w io.Writer
	switch len(writers) {
	case 0:
		w = io.Discard
	case 1:
		w = writers[0]
	default:
		w = io.MultiWriter(writers...)
	}

	level := slog.LevelInfo
	if os.Getenv("CCT_DEBUG") != "" {
		level = slog.LevelDebug
	}
	defaultLogger = slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

func get() *slog.Logger {
	if defaultLogger == nil {
		Init(false)
	}
	return defaultLogger
}

func Info(msg string, args ...any)  { get().Info(msg, args...) }
func Warn(msg string, args ...any)  { get().Warn(msg, args...) }
func Error(msg string, args ...any) { get().Error(msg, args...) }
func Debug(msg string, args ...any) { get().Debug(msg, args...) }
