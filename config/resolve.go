package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ResolveServer merges cfg with defaults and returns a fully populated copy.
// Relative paths are resolved against root. cfg may be nil. Absent or
// malformed fields are never an error; they take the documented default.
func ResolveServer(root string, cfg *ServerConfig) *ServerConfig {
	out := ServerConfig{}
	if cfg != nil {
		out = *cfg
	}

	v := newEnv()

	out.Port = resolvePort(v, out.Port)
	out.Env = fallback(out.Env, envString(v, "APP_ENV", "ENV"), DefaultEnv)
	out.ViewEngine = fallback(out.ViewEngine, DefaultViewEngine)
	out.ViewsPath = absPath(root, fallback(out.ViewsPath, "views"))
	out.StaticPath = absPath(root, fallback(out.StaticPath, "static"))
	if out.Timeout <= 0 {
		out.Timeout = DefaultTimeout
	}

	out.UseCompression = Bool(Enabled(out.UseCompression, true))
	out.UseCookieParser = Bool(Enabled(out.UseCookieParser, true))
	out.UseReqJSON = Bool(Enabled(out.UseReqJSON, true))
	out.UseURLEncodeExtended = Bool(Enabled(out.UseURLEncodeExtended, true))
	out.UseMetrics = Bool(Enabled(out.UseMetrics, false))

	out.Session = ResolveSession(out.Session)
	return &out
}

// ResolveSession applies session defaults for fields left unset.
func ResolveSession(cfg *SessionConfig) *SessionConfig {
	out := SessionConfig{}
	if cfg != nil {
		out = *cfg
	}
	out.Cookie.HTTPOnly = Bool(Enabled(out.Cookie.HTTPOnly, true))
	out.Cookie.Secure = Bool(Enabled(out.Cookie.Secure, false))
	out.Cookie.Path = fallback(out.Cookie.Path, DefaultSessionPath)
	out.Resave = Bool(Enabled(out.Resave, false))
	out.SaveUninitialized = Bool(Enabled(out.SaveUninitialized, true))
	out.Secret = fallback(out.Secret, DefaultSessionSecret)
	return &out
}

// ResolveLog merges cfg with logging defaults and creates the log directory
// when absent. Directory creation is the only filesystem mutation performed
// by configuration resolution.
func ResolveLog(root string, cfg *LogConfig) (*LogConfig, error) {
	out := LogConfig{}
	if cfg != nil {
		out = *cfg
	}

	level := DefaultLogLevel
	if out.Level != nil {
		level = *out.Level
	}
	out.Level = Int(clampLevel(level))

	out.DatePattern = fallback(out.DatePattern, DefaultDatePattern)
	out.TimestampFormat = fallback(out.TimestampFormat, DefaultTimestampFormat)
	out.UseSplat = Bool(Enabled(out.UseSplat, true))

	if _, err := ParseAge(out.MaxFileAge); err != nil {
		out.MaxFileAge = DefaultMaxFileAge
	}
	if _, err := ParseSize(out.MaxFileSize); err != nil {
		out.MaxFileSize = DefaultMaxFileSize
	}

	out.Dir = absPath(root, fallback(out.Dir, "logs"))
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", out.Dir, err)
	}
	return &out, nil
}

// ParseAge parses a retention duration. Beyond time.ParseDuration syntax it
// accepts a "d" suffix for whole days ("14d").
func ParseAge(raw string) (time.Duration, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if days, ok := strings.CutSuffix(trimmed, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid day duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(trimmed)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	return d, nil
}

// ParseSize parses a byte size with an optional k/m/g suffix ("20m", "512k").
// A bare number is taken as bytes.
func ParseSize(raw string) (int64, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return 0, fmt.Errorf("empty size")
	}
	unit := int64(1)
	switch trimmed[len(trimmed)-1] {
	case 'k':
		unit = 1 << 10
		trimmed = trimmed[:len(trimmed)-1]
	case 'm':
		unit = 1 << 20
		trimmed = trimmed[:len(trimmed)-1]
	case 'g':
		unit = 1 << 30
		trimmed = trimmed[:len(trimmed)-1]
	}
	n, err := strconv.ParseInt(strings.TrimSpace(trimmed), 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid size %q", raw)
	}
	return n * unit, nil
}

func newEnv() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}

// resolvePort implements environment override > explicit config > default.
// An unparseable or negative value at either step falls through.
func resolvePort(v *viper.Viper, configured int) int {
	if raw := strings.TrimSpace(v.GetString("PORT")); raw != "" {
		if port, err := strconv.Atoi(raw); err == nil && port > 0 {
			return port
		}
	}
	if configured > 0 {
		return configured
	}
	return DefaultPort
}

func envString(v *viper.Viper, keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(v.GetString(key)); value != "" {
			return value
		}
	}
	return ""
}

func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 6 {
		return 6
	}
	return level
}

func absPath(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func fallback(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
