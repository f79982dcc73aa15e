package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// LogLevel enumerates severity tiers.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

func (l LogLevel) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLogLevel maps a level name (case-insensitive) to a LogLevel.
func ParseLogLevel(s string) (LogLevel, error) {
	for i, n := range levelNames {
		if strings.EqualFold(s, n) {
			return LogLevel(i), nil
		}
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// Logger is a levelled logger shared by the whole conversion run.
// Every line carries the short run id so that output from several
// conversions appended to one log file can be told apart.
type Logger struct {
	mu    sync.Mutex
	level LogLevel
	inner *log.Logger
	file  *os.File
	runID string
}

var (
	globalLogger *Logger
	logOnce      sync.Once
)

// InitLogger creates the singleton logger. Call once at startup.
func InitLogger(minLevel LogLevel, logFilePath string) *Logger {
	logOnce.Do(func() {
		var writers []io.Writer
		writers = append(writers, os.Stdout)

		var f *os.File
		if logFilePath != "" {
			var err error
			f, err = os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err == nil {
				writers = append(writers, f)
			} else {
				log.Printf("[WARN] could not open log file %s: %v\n", logFilePath, err)
			}
		}

		globalLogger = NewLogger(minLevel, io.MultiWriter(writers...))
		globalLogger.file = f
	})
	return globalLogger
}

// NewLogger builds a standalone logger writing to w. Tests use it to
// capture output without touching the global instance.
func NewLogger(minLevel LogLevel, w io.Writer) *Logger {
	return &Logger{
		level: minLevel,
		inner: log.New(w, "", 0),
		runID: uuid.NewString()[:8],
	}
}

// L returns the global logger, initialising a stdout-only INFO logger
// when InitLogger has not been called.
func L() *Logger {
	if globalLogger == nil {
		return InitLogger(INFO, "")
	}
	return globalLogger
}

// RunID returns the short identifier stamped on every line.
func (l *Logger) RunID() string {
	return l.runID
}

// SetLevel changes the minimum level that is emitted.
func (l *Logger) SetLevel(lvl LogLevel) {
	l.mu.Lock()
	l.level = lvl
	l.mu.Unlock()
}

// Close flushes and closes the log file, if any.
func (l *Logger) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		_ = l.file.Close()
		l.file = nil
	}
}

func (l *Logger) log(lvl LogLevel, format string, args ...any) {
	l.mu.Lock()
	if lvl < l.level {
		l.mu.Unlock()
		return
	}
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	msg := fmt.Sprintf(format, args...)
	l.inner.Printf("[%s] %s  run=%s  %s", lvl, ts, l.runID, msg)
	l.mu.Unlock()

	if lvl == FATAL {
		os.Exit(1)
	}
}

func (l *Logger) Debug(f string, a ...any) { l.log(DEBUG, f, a...) }
func (l *Logger) Info(f string, a ...any)  { l.log(INFO, f, a...) }
func (l *Logger) Warn(f string, a ...any)  { l.log(WARN, f, a...) }
func (l *Logger) Error(f string, a ...any) { l.log(ERROR, f, a...) }
func (l *Logger) Fatal(f string, a ...any) { l.log(FATAL, f, a...) }
