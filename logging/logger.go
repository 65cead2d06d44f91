package logging

import (
	"bytes"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/aiden-jnj/ab-express/config"
)

// Logger dispatches each message to every transport whose severity admits
// it. It is created once per server instance and lives for the process
// lifetime; writes are flush-on-write with no explicit teardown required.
type Logger struct {
	level      Severity
	formatter  Formatter
	transports []Transport
	now        func() time.Time
	stream     *streamWriter
}

// Option customizes logger construction.
type Option func(*Logger)

// WithConsoleWriter redirects the console transport, mainly for tests.
func WithConsoleWriter(w io.Writer) Option {
	return func(l *Logger) {
		for i, t := range l.transports {
			if t.Name() == "console" {
				l.transports[i] = NewConsoleTransport(w)
			}
		}
	}
}

// WithClock overrides the time source used for timestamps and rotation.
func WithClock(now func() time.Time) Option {
	return func(l *Logger) {
		if now == nil {
			return
		}
		l.now = now
		for _, t := range l.transports {
			if ft, ok := t.(*FileTransport); ok {
				ft.now = now
			}
		}
	}
}

// New resolves cfg against root and builds a logger with one rotating file
// transport per severity in [error..level] plus the catch-all console
// transport.
func New(root string, cfg *config.LogConfig, opts ...Option) (*Logger, error) {
	resolved, err := config.ResolveLog(root, cfg)
	if err != nil {
		return nil, err
	}

	maxSize, err := config.ParseSize(resolved.MaxFileSize)
	if err != nil {
		return nil, err
	}
	maxAge, err := config.ParseAge(resolved.MaxFileAge)
	if err != nil {
		return nil, err
	}

	level := Severity(*resolved.Level)
	l := &Logger{
		level: level,
		formatter: Formatter{
			TimestampFormat: resolved.TimestampFormat,
			Splat:           *resolved.UseSplat,
		},
		now: time.Now,
	}
	for s := SeverityError; s <= level; s++ {
		l.transports = append(l.transports, newFileTransport(s, resolved.Dir, resolved.DatePattern, maxSize, maxAge, nil))
	}
	// The console transport is appended last so it is present regardless of
	// the configured level.
	l.transports = append(l.transports, NewConsoleTransport(nil))

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.stream = &streamWriter{logger: l}
	return l, nil
}

// NewConsole returns a console-only logger with default formatting. It backs
// the server pipeline when the caller supplies no logger.
func NewConsole(opts ...Option) *Logger {
	l := &Logger{
		level: SeveritySilly,
		formatter: Formatter{
			TimestampFormat: config.DefaultTimestampFormat,
			Splat:           true,
		},
		transports: []Transport{NewConsoleTransport(nil)},
		now:        time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.stream = &streamWriter{logger: l}
	return l
}

// Level reports the configured verbosity level.
func (l *Logger) Level() Severity { return l.level }

// Transports returns the ordered transport set.
func (l *Logger) Transports() []Transport { return l.transports }

func (l *Logger) Error(msg string, args ...any)   { l.log(SeverityError, msg, args) }
func (l *Logger) Warn(msg string, args ...any)    { l.log(SeverityWarn, msg, args) }
func (l *Logger) Info(msg string, args ...any)    { l.log(SeverityInfo, msg, args) }
func (l *Logger) HTTP(msg string, args ...any)    { l.log(SeverityHTTP, msg, args) }
func (l *Logger) Verbose(msg string, args ...any) { l.log(SeverityVerbose, msg, args) }
func (l *Logger) Debug(msg string, args ...any)   { l.log(SeverityDebug, msg, args) }
func (l *Logger) Silly(msg string, args ...any)   { l.log(SeveritySilly, msg, args) }

func (l *Logger) log(severity Severity, msg string, args []any) {
	line := l.formatter.Format(l.now(), severity, msg, args)
	for _, t := range l.transports {
		if t.Admits(severity) {
			t.Log(line)
		}
	}
}

// Writer returns the stream adapter. Every complete line written to it is
// logged at the http severity, so line-oriented access logs land in the same
// sinks as structured messages.
func (l *Logger) Writer() io.Writer { return l.stream }

// Close closes every transport.
func (l *Logger) Close() error {
	var first error
	for _, t := range l.transports {
		if err := t.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// streamWriter buffers partial writes and emits one http-severity message
// per completed line.
type streamWriter struct {
	mu     sync.Mutex
	logger *Logger
	buf    bytes.Buffer
}

func (w *streamWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// Partial line stays buffered until its newline arrives.
			w.buf.WriteString(line)
			break
		}
		if msg := strings.TrimRight(line, "\r\n"); msg != "" {
			w.logger.HTTP(msg)
		}
	}
	return len(p), nil
}
