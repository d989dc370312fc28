// Package logging provides the slog backend shared by every subsystem. Output
// goes to stdout and, when a log file is configured, to a rotated file.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

const defaultMaxLogSizeKB = 10 * 1024

// LogConfig configures a LogBackend.
type LogConfig struct {
	// LogFile is the path of the rotated log file. Empty logs to stdout only.
	LogFile string
	// DebugLevel is either a single level for every subsystem or a comma
	// separated list of SUBSYS=level pairs, optionally led by a default
	// level ("info,TABL=debug").
	DebugLevel   string
	MaxLogFiles  int
	MaxLogSizeKB int64
	// Quiet drops the stdout copy. Ignored without a LogFile.
	Quiet bool
}

// LogBackend hands out subsystem loggers that share one output.
type LogBackend struct {
	mu      sync.Mutex
	backend *slog.Backend
	rotator *rotator.Rotator
	level   slog.Level
	levels  map[string]slog.Level
	loggers map[string]slog.Logger
}

// NewLogBackend creates the backend described by cfg.
func NewLogBackend(cfg LogConfig) (*LogBackend, error) {
	def, levels, err := parseDebugLevel(cfg.DebugLevel)
	if err != nil {
		return nil, err
	}
	lb := &LogBackend{
		level:   def,
		levels:  levels,
		loggers: make(map[string]slog.Logger),
	}

	var out io.Writer = os.Stdout
	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		maxFiles := cfg.MaxLogFiles
		if maxFiles <= 0 {
			maxFiles = 3
		}
		sizeKB := cfg.MaxLogSizeKB
		if sizeKB <= 0 {
			sizeKB = defaultMaxLogSizeKB
		}
		r, err := rotator.New(cfg.LogFile, sizeKB, false, maxFiles)
		if err != nil {
			return nil, fmt.Errorf("failed to create file rotator: %w", err)
		}
		lb.rotator = r
		if cfg.Quiet {
			out = r
		} else {
			out = io.MultiWriter(os.Stdout, r)
		}
	}
	lb.backend = slog.NewBackend(out)
	return lb, nil
}

// Logger returns the logger for subsystem, creating it on first use.
func (lb *LogBackend) Logger(subsystem string) slog.Logger {
	if lb == nil || lb.backend == nil {
		return slog.Disabled
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()
	if l, ok := lb.loggers[subsystem]; ok {
		return l
	}
	l := lb.backend.Logger(subsystem)
	level, ok := lb.levels[subsystem]
	if !ok {
		level = lb.level
	}
	l.SetLevel(level)
	lb.loggers[subsystem] = l
	return l
}

// setLevel changes the level of every logger created so far and of the ones
// created later.
func (lb *LogBackend) setLevel(level string) error {
	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return fmt.Errorf("invalid debug level %q", level)
	}
	lb.mu.Lock()
	defer lb.mu.Unlock()
	lb.level = lvl
	lb.levels = map[string]slog.Level{}
	for _, l := range lb.loggers {
		l.SetLevel(lvl)
	}
	return nil
}

// Close flushes and closes the log file, if any.
func (lb *LogBackend) Close() error {
	if lb == nil || lb.rotator == nil {
		return nil
	}
	return lb.rotator.Close()
}

func parseDebugLevel(s string) (slog.Level, map[string]slog.Level, error) {
	def := slog.LevelInfo
	levels := make(map[string]slog.Level)
	if s == "" {
		return def, levels, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		subsys, lvlStr, found := strings.Cut(part, "=")
		if !found {
			lvlStr = subsys
		}
		lvl, ok := slog.LevelFromString(lvlStr)
		if !ok {
			return 0, nil, fmt.Errorf("invalid debug level %q", lvlStr)
		}
		if found {
			levels[strings.ToUpper(subsys)] = lvl
		} else {
			def = lvl
		}
	}
	return def, levels, nil
}
