package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// FileTransport writes lines for exactly one severity to
// `<dir>/<date>-<severity>.log`. It rotates when the date pattern rolls over
// or the file would exceed maxSize, and prunes files older than maxAge.
type FileTransport struct {
	severity    Severity
	dir         string
	datePattern string
	maxSize     int64
	maxAge      time.Duration
	now         func() time.Time

	mu    sync.Mutex
	file  *os.File
	size  int64
	stamp string
	seq   int
}

func newFileTransport(severity Severity, dir, datePattern string, maxSize int64, maxAge time.Duration, now func() time.Time) *FileTransport {
	if now == nil {
		now = time.Now
	}
	return &FileTransport{
		severity:    severity,
		dir:         dir,
		datePattern: datePattern,
		maxSize:     maxSize,
		maxAge:      maxAge,
		now:         now,
	}
}

func (f *FileTransport) Name() string { return f.severity.String() }

func (f *FileTransport) Admits(s Severity) bool { return s == f.severity }

func (f *FileTransport) Log(line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stamp := f.now().Format(f.datePattern)
	if f.file == nil || stamp != f.stamp {
		f.stamp = stamp
		f.seq = 0
		if err := f.open(); err != nil {
			return err
		}
	}
	if f.size > 0 && f.size+int64(len(line)) > f.maxSize {
		f.seq++
		if err := f.open(); err != nil {
			return err
		}
	}

	n, err := f.file.WriteString(line)
	f.size += int64(n)
	return err
}

// open closes the previous file, prunes expired siblings, and opens the next
// file for the current stamp, skipping past size-exhausted sequence numbers
// left over from an earlier run.
func (f *FileTransport) open() error {
	if f.file != nil {
		f.file.Close()
		f.file = nil
	}
	f.pruneLocked()

	for {
		name := f.fileName()
		if info, err := os.Stat(name); err == nil && info.Size() >= f.maxSize {
			f.seq++
			continue
		}
		file, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file %s: %w", name, err)
		}
		info, err := file.Stat()
		if err != nil {
			file.Close()
			return err
		}
		f.file = file
		f.size = info.Size()
		return nil
	}
}

func (f *FileTransport) fileName() string {
	base := f.stamp + "-" + f.severity.String()
	if f.seq > 0 {
		base += "." + strconv.Itoa(f.seq)
	}
	return filepath.Join(f.dir, base+".log")
}

// Prune removes this transport's files older than the retention window.
func (f *FileTransport) Prune() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.pruneLocked()
}

func (f *FileTransport) pruneLocked() error {
	if f.maxAge <= 0 {
		return nil
	}
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return err
	}
	cutoff := f.now().Add(-f.maxAge)
	marker := "-" + f.severity.String()
	current := filepath.Base(f.fileName())
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || name == current {
			continue
		}
		if !strings.HasSuffix(name, ".log") || !strings.Contains(name, marker) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(f.dir, name))
		}
	}
	return nil
}

func (f *FileTransport) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	return err
}
