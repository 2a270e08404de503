// Package logging builds the harness loggers: logrus writing to the console
// and to a timestamped file, tagged with the run id.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"e2e_automation/infrastructure/security"
)

// TimestampLayout names log files and screenshots
const TimestampLayout = "20060102_150405"

// Options configure a Logger
type Options struct {
	Dir   string
	Level logrus.Level
	// Console receives a copy of every line; nil means stdout
	Console io.Writer
	// Now stamps the file name; nil means time.Now
	Now func() time.Time
}

// Logger is a logrus logger that owns its log file
type Logger struct {
	*logrus.Logger
	runID string
	path  string
	file  *os.File
}

// New - creates a logger writing to <dir>/test_log_<timestamp>.log and the console
func New(opts Options) (*Logger, error) {
	return open(opts, "test_log")
}

// NewTestLogger - creates a logger with its own <dir>/<test>_<timestamp>.log
func NewTestLogger(opts Options, testName string) (*Logger, error) {
	return open(opts, SafeName(testName))
}

func open(opts Options, prefix string) (*Logger, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	console := opts.Console
	if console == nil {
		console = os.Stdout
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	path := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", prefix, now().Format(TimestampLayout)))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(opts.Level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetOutput(io.MultiWriter(console, file))
	logger.AddHook(security.NewSecurityLayer().Hook())

	l := &Logger{
		Logger: logger,
		runID:  uuid.NewString(),
		path:   path,
		file:   file,
	}
	l.Named("logging").WithField("file", path).Info("Logger initialized")
	return l, nil
}

// Discard - returns a logger that writes nowhere, for callers without a log directory
func Discard() *Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Logger{Logger: logger, runID: uuid.NewString()}
}

// Named - returns an entry tagged with the component name and run id
func (l *Logger) Named(name string) *logrus.Entry {
	return l.WithFields(logrus.Fields{
		"logger": name,
		"run_id": l.runID,
	})
}

// RunID - returns the id shared by every entry of this logger
func (l *Logger) RunID() string {
	return l.runID
}

// Path - returns the log file path; empty for Discard loggers
func (l *Logger) Path() string {
	return l.path
}

// Close - flushes and closes the log file
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.SetOutput(io.Discard)
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SafeName - turns a test name like "TestLogin/valid_user" into a file-name fragment
func SafeName(name string) string {
	safe := unsafeChars.ReplaceAllString(name, "_")
	if safe == "" {
		return "unnamed"
	}
	return safe
}
