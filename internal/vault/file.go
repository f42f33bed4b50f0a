package vault

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"golang.org/x/sys/unix"
)

const (
	dirPerms  = 0o750
	filePerms = 0o600

	// stateExt marks entry files so stray files in the directory are ignored.
	stateExt = ".state"

	lockFileName = ".vault.lock"
)

// FileBackend stores one file per key under a directory. Writes go through
// a temp-file rename so a crash never leaves a half-written entry, and every
// operation holds a directory-wide flock so concurrent processes serialize.
type FileBackend struct {
	dir string
}

// NewFileBackend creates the directory if needed and returns a backend
// rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		return nil, fmt.Errorf("file backend: directory is empty")
	}

	err := os.MkdirAll(dir, dirPerms)
	if err != nil {
		return nil, fmt.Errorf("file backend: create directory: %w", err)
	}

	return &FileBackend{dir: filepath.Clean(dir)}, nil
}

// Get returns the value stored under key.
func (b *FileBackend) Get(key string) (string, bool, error) {
	var value string

	var found bool

	err := b.withLock(unix.LOCK_SH, func() error {
		data, readErr := os.ReadFile(b.entryPath(key))
		if readErr != nil {
			if os.IsNotExist(readErr) {
				return nil
			}

			return fmt.Errorf("read entry: %w", readErr)
		}

		value = string(data)
		found = true

		return nil
	})
	if err != nil {
		return "", false, err
	}

	return value, found, nil
}

// Set stores value under key atomically.
func (b *FileBackend) Set(key, value string) error {
	return b.withLock(unix.LOCK_EX, func() error {
		writeErr := atomic.WriteFile(b.entryPath(key), strings.NewReader(value))
		if writeErr != nil {
			return fmt.Errorf("write entry: %w", writeErr)
		}

		return nil
	})
}

// Delete removes the entry for key. Missing entries are not an error.
func (b *FileBackend) Delete(key string) error {
	return b.withLock(unix.LOCK_EX, func() error {
		removeErr := os.Remove(b.entryPath(key))
		if removeErr != nil && !os.IsNotExist(removeErr) {
			return fmt.Errorf("remove entry: %w", removeErr)
		}

		return nil
	})
}

// Clear removes every entry file. The lock file and unrelated files stay.
func (b *FileBackend) Clear() error {
	return b.withLock(unix.LOCK_EX, func() error {
		entries, readErr := os.ReadDir(b.dir)
		if readErr != nil {
			return fmt.Errorf("read directory: %w", readErr)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), stateExt) {
				continue
			}

			removeErr := os.Remove(filepath.Join(b.dir, entry.Name()))
			if removeErr != nil {
				return fmt.Errorf("remove entry: %w", removeErr)
			}
		}

		return nil
	})
}

// Keys returns all stored keys in directory order.
func (b *FileBackend) Keys() ([]string, error) {
	var keys []string

	err := b.withLock(unix.LOCK_SH, func() error {
		entries, readErr := os.ReadDir(b.dir)
		if readErr != nil {
			return fmt.Errorf("read directory: %w", readErr)
		}

		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), stateExt) {
				continue
			}

			key, decodeErr := url.QueryUnescape(strings.TrimSuffix(entry.Name(), stateExt))
			if decodeErr != nil {
				// Not one of ours; skip rather than fail the listing.
				continue
			}

			keys = append(keys, key)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return keys, nil
}

// entryPath maps a logical key to a file path. Keys are percent-escaped so
// namespace prefixes like "demo:" stay filesystem-safe.
func (b *FileBackend) entryPath(key string) string {
	return filepath.Join(b.dir, url.QueryEscape(key)+stateExt)
}

// withLock runs handler while holding the backend-wide flock. The lock call
// blocks without a timeout; every operation completes or waits.
func (b *FileBackend) withLock(how int, handler func() error) error {
	lockPath := filepath.Join(b.dir, lockFileName)

	file, openErr := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, filePerms)
	if openErr != nil {
		return fmt.Errorf("open lock file: %w", openErr)
	}

	defer func() { _ = file.Close() }()

	flockErr := unix.Flock(int(file.Fd()), how)
	if flockErr != nil {
		return fmt.Errorf("flock: %w", flockErr)
	}

	defer func() { _ = unix.Flock(int(file.Fd()), unix.LOCK_UN) }()

	return handler()
}
