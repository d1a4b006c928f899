// Package logger provides the run log of the IIROC scrape plus simple metrics tracking.
//
// The run log is an append-only flat file. In text format each message is written as a
// plain line, exactly as the scrape job has always logged:
//
//	*****************************04122016*****************************
//	Scraping URL: http://www.iiroc.ca/industry/enforcement/Pages/Enforcement.aspx
//	Removing Duplicates
//	Creating CSV
//	Writing to CSV
//	Program took 1.234 seconds to complete.
//
// In JSON format every line is a structured LogEntry with timestamp, level and fields.
//
// A failing log write never fails the run. The first failure is reported once on the
// fallback writer (stderr by default) and later messages are dropped.
//
// Example usage:
//
//	log, err := logger.Open("/Logs/pylog_IIROC.txt", config.LogText)
//	if err != nil {
//	    return err
//	}
//	defer log.Close()
//
//	log.Info("Scraping URL: "+url, logger.Fields{"url": url})
//	log.Error("Fetch failed", nil, err)
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmohb/iiroc-scrape/internal/config"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// BannerRule surrounds the date on the first line of every run
const BannerRule = "*****************************"

// Logger writes the run log
type Logger struct {
	mu       sync.Mutex
	minLevel Level
	format   config.LogFormat
	output   io.Writer
	closer   io.Closer
	fallback io.Writer
	failed   bool
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single JSON log line
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, config.LogText, os.Stderr)
}

// New creates a logger writing to output.
// Messages below the minimum level are discarded.
func New(level Level, format config.LogFormat, output io.Writer) *Logger {
	return &Logger{
		minLevel: level,
		format:   format,
		output:   output,
		fallback: os.Stderr,
	}
}

// Open opens path for appending, creating the file and its directory if absent
func Open(path string, format config.LogFormat) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	l := New(LevelInfo, format, f)
	l.closer = f
	return l, nil
}

// SetDefault sets the package-level logger used by Debug, Warn and Error
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// SetLevel changes the minimum level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.minLevel = level
}

// SetFallback sets where the first write failure is reported
func (l *Logger) SetFallback(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.fallback = w
}

// Close closes the underlying log file, if the logger owns one
func (l *Logger) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// Banner writes the per-run separator line for a MMDDYYYY date
func (l *Logger) Banner(fileDate string) {
	l.log(LevelInfo, BannerRule+fileDate+BannerRule, nil, nil)
}

// log writes a log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	var line string
	if l.format == config.LogJSON {
		line = l.jsonLine(level, message, fields, err)
	} else {
		line = textLine(level, message, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failed {
		return
	}
	if _, writeErr := io.WriteString(l.output, line+"\n"); writeErr != nil {
		l.failed = true
		if l.fallback != nil {
			fmt.Fprintf(l.fallback, "Warning: writing log failed, further log lines dropped: %v\n", writeErr)
		}
	}
}

func (l *Logger) jsonLine(level Level, message string, fields Fields, err error) string {
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    fields,
	}

	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		// Fallback to plain text if JSON marshal fails
		return fmt.Sprintf("[%s] %s: %s (marshal error: %v)", entry.Timestamp, entry.Level, entry.Message, marshalErr)
	}
	return string(data)
}

// textLine keeps INFO and DEBUG messages verbatim and prefixes warnings and errors
func textLine(level Level, message string, err error) string {
	var sb strings.Builder
	if level == LevelWarn || level == LevelError {
		sb.WriteString(string(level))
		sb.WriteString(": ")
	}
	sb.WriteString(message)
	if err != nil {
		sb.WriteString(": ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return levels[level] >= levels[l.minLevel]
}

// Debug logs a debug message
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs a failure together with its error
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}

// Metrics tracks counters and timings of a run. All operations are thread-safe.
type Metrics struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  map[string][]time.Duration
}

// NewMetrics creates a new metrics tracker
func NewMetrics() *Metrics {
	return &Metrics{
		counters: make(map[string]int64),
		timings:  make(map[string][]time.Duration),
	}
}

// AddCounter increments a counter by n
func (m *Metrics) AddCounter(name string, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[name] += n
}

// RecordTiming records a duration measurement
func (m *Metrics) RecordTiming(name string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings[name] = append(m.timings[name], duration)
}

// GetSnapshot returns a deep copy of all metrics:
//   - "counters": map of counter names to values
//   - "timings": map of timing names to statistics (count, total, min, max)
func (m *Metrics) GetSnapshot() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := make(map[string]interface{})

	counters := make(map[string]int64)
	for k, v := range m.counters {
		counters[k] = v
	}
	snapshot["counters"] = counters

	timings := make(map[string]map[string]interface{})
	for name, durations := range m.timings {
		if len(durations) == 0 {
			continue
		}

		var total time.Duration
		min := durations[0]
		max := durations[0]

		for _, d := range durations {
			total += d
			if d < min {
				min = d
			}
			if d > max {
				max = d
			}
		}

		timings[name] = map[string]interface{}{
			"count": len(durations),
			"total": total.String(),
			"min":   min.String(),
			"max":   max.String(),
		}
	}
	snapshot["timings"] = timings

	return snapshot
}
