package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveServerDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	got := ResolveServer("/app", nil)

	assert.Equal(t, DefaultPort, got.Port)
	assert.Equal(t, DefaultEnv, got.Env)
	assert.Equal(t, DefaultViewEngine, got.ViewEngine)
	assert.Equal(t, filepath.Join("/app", "views"), got.ViewsPath)
	assert.Equal(t, filepath.Join("/app", "static"), got.StaticPath)
	assert.Equal(t, DefaultTimeout, got.Timeout)

	assert.True(t, *got.UseCompression)
	assert.True(t, *got.UseCookieParser)
	assert.True(t, *got.UseReqJSON)
	assert.True(t, *got.UseURLEncodeExtended)
	assert.False(t, *got.UseMetrics)
}

func TestResolveServerPortPrecedence(t *testing.T) {
	t.Run("env overrides config", func(t *testing.T) {
		t.Setenv("PORT", "8080")
		got := ResolveServer("/app", &ServerConfig{Port: 3000})
		assert.Equal(t, 8080, got.Port)
	})

	t.Run("config wins when env unset", func(t *testing.T) {
		t.Setenv("PORT", "")
		got := ResolveServer("/app", &ServerConfig{Port: 3000})
		assert.Equal(t, 3000, got.Port)
	})

	t.Run("invalid env falls through", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		got := ResolveServer("/app", &ServerConfig{Port: 3000})
		assert.Equal(t, 3000, got.Port)
	})

	t.Run("negative values fall back to default", func(t *testing.T) {
		t.Setenv("PORT", "-1")
		got := ResolveServer("/app", &ServerConfig{Port: -5})
		assert.Equal(t, DefaultPort, got.Port)
	})
}

func TestResolveServerEnvFromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("ENV", "")
	got := ResolveServer("/app", nil)
	assert.Equal(t, "production", got.Env)

	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "staging")
	got = ResolveServer("/app", nil)
	assert.Equal(t, "staging", got.Env)

	// Explicit config beats the environment.
	got = ResolveServer("/app", &ServerConfig{Env: "test"})
	assert.Equal(t, "test", got.Env)
}

func TestResolveServerAbsolutePathsKept(t *testing.T) {
	t.Setenv("PORT", "")
	got := ResolveServer("/app", &ServerConfig{
		ViewsPath:  "/elsewhere/views",
		StaticPath: "/elsewhere/public",
	})
	assert.Equal(t, "/elsewhere/views", got.ViewsPath)
	assert.Equal(t, "/elsewhere/public", got.StaticPath)
}

func TestResolveSessionDefaults(t *testing.T) {
	got := ResolveSession(nil)

	assert.Equal(t, DefaultSessionSecret, got.Secret)
	assert.Equal(t, DefaultSessionPath, got.Cookie.Path)
	assert.True(t, *got.Cookie.HTTPOnly)
	assert.False(t, *got.Cookie.Secure)
	assert.False(t, *got.Resave)
	assert.True(t, *got.SaveUninitialized)
}

func TestResolveSessionKeepsExplicitValues(t *testing.T) {
	got := ResolveSession(&SessionConfig{
		Secret: "hunter2",
		Cookie: CookieConfig{
			Path:     "/api",
			HTTPOnly: Bool(false),
			MaxAge:   time.Hour,
		},
		SaveUninitialized: Bool(false),
	})

	assert.Equal(t, "hunter2", got.Secret)
	assert.Equal(t, "/api", got.Cookie.Path)
	assert.False(t, *got.Cookie.HTTPOnly)
	assert.Equal(t, time.Hour, got.Cookie.MaxAge)
	assert.False(t, *got.SaveUninitialized)
}

func TestResolveLogDefaults(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveLog(root, nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, *got.Level)
	assert.Equal(t, DefaultDatePattern, got.DatePattern)
	assert.Equal(t, DefaultTimestampFormat, got.TimestampFormat)
	assert.Equal(t, DefaultMaxFileAge, got.MaxFileAge)
	assert.Equal(t, DefaultMaxFileSize, got.MaxFileSize)
	assert.True(t, *got.UseSplat)
	assert.Equal(t, filepath.Join(root, "logs"), got.Dir)

	info, err := os.Stat(got.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestResolveLogClampsLevel(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveLog(root, &LogConfig{Level: Int(9)})
	require.NoError(t, err)
	assert.Equal(t, 6, *got.Level)

	got, err = ResolveLog(root, &LogConfig{Level: Int(-1)})
	require.NoError(t, err)
	assert.Equal(t, 0, *got.Level)
}

func TestResolveLogMalformedValuesFallBack(t *testing.T) {
	root := t.TempDir()

	got, err := ResolveLog(root, &LogConfig{MaxFileAge: "fortnight", MaxFileSize: "big"})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxFileAge, got.MaxFileAge)
	assert.Equal(t, DefaultMaxFileSize, got.MaxFileSize)
}

func TestParseAge(t *testing.T) {
	d, err := ParseAge("14d")
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, d)

	d, err = ParseAge("168h")
	require.NoError(t, err)
	assert.Equal(t, 168*time.Hour, d)

	_, err = ParseAge("")
	assert.Error(t, err)
	_, err = ParseAge("-3d")
	assert.Error(t, err)
	_, err = ParseAge("soon")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	n, err := ParseSize("20m")
	require.NoError(t, err)
	assert.Equal(t, int64(20<<20), n)

	n, err = ParseSize("512k")
	require.NoError(t, err)
	assert.Equal(t, int64(512<<10), n)

	n, err = ParseSize("1g")
	require.NoError(t, err)
	assert.Equal(t, int64(1<<30), n)

	n, err = ParseSize("4096")
	require.NoError(t, err)
	assert.Equal(t, int64(4096), n)

	_, err = ParseSize("")
	assert.Error(t, err)
	_, err = ParseSize("0m")
	assert.Error(t, err)
	_, err = ParseSize("lots")
	assert.Error(t, err)
}
