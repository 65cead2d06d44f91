package config

import (
	"io"
	"time"

	"github.com/go-chi/chi/v5"
)

// Defaults applied by the resolver for fields left unset by the caller.
const (
	DefaultPort            = 80
	DefaultEnv             = "development"
	DefaultViewEngine      = "html"
	DefaultTimeout         = 5 * time.Second
	DefaultSessionSecret   = "keyboard cat"
	DefaultSessionPath     = "/"
	DefaultLogLevel        = 2 // info
	DefaultDatePattern     = "2006-01-02"
	DefaultTimestampFormat = "2006-01-02 15:04:05"
	DefaultMaxFileAge      = "14d"
	DefaultMaxFileSize     = "20m"
)

// Leveled is the logging capability the server pipeline requires: one call
// per severity name plus a write stream that maps text lines to the http
// severity. The logging package's Logger satisfies it; callers may supply
// their own implementation.
type Leveled interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	HTTP(msg string, args ...any)
	Verbose(msg string, args ...any)
	Debug(msg string, args ...any)
	Silly(msg string, args ...any)

	// Writer returns a stream adapter; every complete line written to it is
	// logged at the http severity.
	Writer() io.Writer
}

// LogConfig controls logger construction. Every field is optional; the
// resolver replaces absent or malformed values with the documented default.
type LogConfig struct {
	// Level enables file transports for severities 0..Level. Values outside
	// [0,6] are clamped. Nil means DefaultLogLevel.
	Level *int

	// DatePattern is the Go time layout used for log file date prefixes and
	// for date-based rotation.
	DatePattern string

	// Dir is the log directory, resolved against the caller's root directory
	// when relative. It is created if absent.
	Dir string

	// MaxFileAge is a duration string ("168h", "14d"); files older than this
	// are pruned.
	MaxFileAge string

	// MaxFileSize is a size string ("20m", "512k"); a transport rolls over
	// once its file would exceed it.
	MaxFileSize string

	// UseSplat enables printf-style interpolation of message arguments.
	UseSplat *bool

	// TimestampFormat is the Go time layout for the line timestamp.
	TimestampFormat string
}

// CookieConfig describes the session cookie. Defaults are applied only for
// fields left unset.
type CookieConfig struct {
	Domain   string
	HTTPOnly *bool // default true
	MaxAge   time.Duration
	Path     string // default "/"
	Secure   *bool  // default false
}

// SessionConfig configures the session stage.
type SessionConfig struct {
	Cookie            CookieConfig
	Resave            *bool // default false
	SaveUninitialized *bool // default true
	Secret            string
}

// ServerConfig configures the middleware pipeline and listener. The zero
// value is valid: every field independently defaults.
type ServerConfig struct {
	// Port for the listening socket. The PORT environment variable, when
	// parseable, overrides it; an invalid or negative value falls back to
	// DefaultPort.
	Port int

	// TrustProxy honors X-Forwarded-For / X-Real-IP for the client address.
	TrustProxy bool

	// ViewEngine is the template file extension rendered through
	// html/template.
	ViewEngine string

	// ViewsPath holds view templates, resolved against the root directory.
	ViewsPath string

	// Router is the application router mounted at root when supplied. Its
	// unmatched requests fall through to the static and not-found stages.
	Router chi.Router

	Session *SessionConfig

	// StaticPath is served by the static stage, default <root>/static.
	StaticPath string

	// Timeout bounds request processing, default 5s.
	Timeout time.Duration

	// Ignore404 serves the static entry page for unmatched GET requests
	// instead of rendering a 404.
	Ignore404 bool

	// Env selects the environment mode; error detail is exposed to the
	// rendered view only in "development". Defaults from APP_ENV / ENV.
	Env string

	// Logger receives pipeline and access logs. When nil the server
	// constructs a console-only default logger.
	Logger Leveled

	UseCompression       *bool // default on
	UseCookieParser      *bool // default on
	UseReqJSON           *bool // default on
	UseURLEncodeExtended *bool // default on
	UseMetrics           *bool // default off
}

// Enabled dereferences an optional toggle, using def when unset.
func Enabled(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// Bool returns a pointer to b, for populating optional toggles.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n, for populating optional numeric fields.
func Int(n int) *int { return &n }
