package logging

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTransportAdmitsOnlyOwnSeverity(t *testing.T) {
	ft := newFileTransport(SeverityWarn, t.TempDir(), "2006-01-02", 1<<20, 0, nil)
	assert.True(t, ft.Admits(SeverityWarn))
	assert.False(t, ft.Admits(SeverityError))
	assert.False(t, ft.Admits(SeverityInfo))
	assert.Equal(t, "warn", ft.Name())
}

func TestFileTransportSizeRollover(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ft := newFileTransport(SeverityError, dir, "2006-01-02", 40, 0, fixedClock(now))
	defer ft.Close()

	line := "0123456789012345678901234\n" // 26 bytes
	require.NoError(t, ft.Log(line))
	require.NoError(t, ft.Log(line)) // would exceed 40, rolls to .1
	require.NoError(t, ft.Log(line)) // rolls again to .2

	for _, name := range []string{
		"2026-05-01-error.log",
		"2026-05-01-error.1.log",
		"2026-05-01-error.2.log",
	} {
		content, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Equal(t, line, string(content), name)
	}
}

func TestFileTransportDateRollover(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 1, 23, 59, 0, 0, time.UTC)
	ft := newFileTransport(SeverityInfo, dir, "2006-01-02", 1<<20, 0, func() time.Time { return now })
	defer ft.Close()

	require.NoError(t, ft.Log("before midnight\n"))
	now = now.Add(2 * time.Minute)
	require.NoError(t, ft.Log("after midnight\n"))

	first, err := os.ReadFile(filepath.Join(dir, "2026-05-01-info.log"))
	require.NoError(t, err)
	assert.Equal(t, "before midnight\n", string(first))

	second, err := os.ReadFile(filepath.Join(dir, "2026-05-02-info.log"))
	require.NoError(t, err)
	assert.Equal(t, "after midnight\n", string(second))
}

func TestFileTransportPrune(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 15, 8, 0, 0, 0, time.UTC)
	ft := newFileTransport(SeverityError, dir, "2006-01-02", 1<<20, 14*24*time.Hour, fixedClock(now))
	defer ft.Close()

	require.NoError(t, ft.Log("current\n"))

	expired := filepath.Join(dir, "2026-04-01-error.log")
	recent := filepath.Join(dir, "2026-05-10-error.log")
	other := filepath.Join(dir, "2026-04-01-info.log")
	for _, name := range []string{expired, recent, other} {
		require.NoError(t, os.WriteFile(name, []byte("old\n"), 0o644))
	}
	require.NoError(t, os.Chtimes(expired, now.AddDate(0, 0, -44), now.AddDate(0, 0, -44)))
	require.NoError(t, os.Chtimes(recent, now.AddDate(0, 0, -5), now.AddDate(0, 0, -5)))
	require.NoError(t, os.Chtimes(other, now.AddDate(0, 0, -44), now.AddDate(0, 0, -44)))

	require.NoError(t, ft.Prune())

	_, err := os.Stat(expired)
	assert.True(t, os.IsNotExist(err), "expired file must be removed")
	_, err = os.Stat(recent)
	assert.NoError(t, err, "recent file must survive")
	_, err = os.Stat(other)
	assert.NoError(t, err, "another severity's file is not this transport's to prune")
	_, err = os.Stat(filepath.Join(dir, "2026-05-15-error.log"))
	assert.NoError(t, err, "the active file must survive")
}

func TestFileTransportSkipsExhaustedSequences(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	// A full file left over from an earlier run must not be appended to.
	full := make([]byte, 64)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2026-05-01-error.log"), full, 0o644))

	ft := newFileTransport(SeverityError, dir, "2006-01-02", 40, 0, fixedClock(now))
	defer ft.Close()
	require.NoError(t, ft.Log("fresh\n"))

	content, err := os.ReadFile(filepath.Join(dir, "2026-05-01-error.1.log"))
	require.NoError(t, err)
	assert.Equal(t, "fresh\n", string(content))
}
