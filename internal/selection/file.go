package selection

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/shared/utils"
)

const (
	lockRetryInterval = 5 * time.Millisecond
	defaultStaleLock  = 10 * time.Second
)

// FileBackend stores one JSON file per key under a directory. The version of
// a file is the hash of its bytes. A sibling "<key>.lock" file created with
// O_EXCL serializes writers across processes; a lock older than the stale
// timeout is broken by one waiter at a time.
type FileBackend struct {
	dir       string
	hasher    *utils.Hasher
	staleLock time.Duration
}

// NewFileBackend creates a file backend rooted at dir, creating it if needed
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &FileBackend{
		dir:       dir,
		hasher:    utils.DefaultHasher(),
		staleLock: defaultStaleLock,
	}, nil
}

// Name implements Backend
func (f *FileBackend) Name() string {
	return "file"
}

// Dir returns the storage directory
func (f *FileBackend) Dir() string {
	return f.dir
}

// Get implements Backend
func (f *FileBackend) Get(ctx context.Context, key string) ([]byte, Version, error) {
	if err := ctx.Err(); err != nil {
		return nil, NoVersion, err
	}
	path, err := f.path(key)
	if err != nil {
		return nil, NoVersion, err
	}
	return f.read(path)
}

// CompareAndSwap implements Backend
func (f *FileBackend) CompareAndSwap(ctx context.Context, key string, expected Version, value []byte) (Version, error) {
	path, err := f.path(key)
	if err != nil {
		return NoVersion, err
	}

	unlock, err := f.lock(ctx, path+".lock")
	if err != nil {
		return NoVersion, err
	}
	defer unlock()

	_, current, err := f.read(path)
	if err != nil {
		return NoVersion, err
	}
	if current != expected {
		return current, fmt.Errorf("%w: %s changed on disk", ErrVersionMismatch, filepath.Base(path))
	}

	tmp := fmt.Sprintf("%s.%s.tmp", path, uuid.NewString())
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return NoVersion, fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return NoVersion, fmt.Errorf("replace document: %w", err)
	}

	return f.version(value), nil
}

func (f *FileBackend) path(key string) (string, error) {
	if err := utils.ValidateKey(key); err != nil {
		return "", err
	}
	return filepath.Join(f.dir, key+".json"), nil
}

func (f *FileBackend) read(path string) ([]byte, Version, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, NoVersion, nil
	}
	if err != nil {
		return nil, NoVersion, fmt.Errorf("read document: %w", err)
	}
	return data, f.version(data), nil
}

func (f *FileBackend) version(data []byte) Version {
	return Version(f.hasher.Hash(data))
}

// lock acquires the lock file, breaking locks older than staleLock left by a
// crashed writer
func (f *FileBackend) lock(ctx context.Context, lockPath string) (func(), error) {
	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_ = file.Close()
			return func() { _ = os.Remove(lockPath) }, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}

		if f.stale(lockPath) && f.breakStale(lockPath) {
			continue
		}

		if err := sleep(ctx, lockRetryInterval); err != nil {
			return nil, err
		}
	}
}

// breakStale removes lockPath while holding "<lock>.break" and only if the
// lock is still stale then, so a lock taken by another waiter in between
// is never removed
func (f *FileBackend) breakStale(lockPath string) bool {
	breakPath := lockPath + ".break"
	file, err := os.OpenFile(breakPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		// left behind by a waiter that crashed while breaking
		if errors.Is(err, fs.ErrExist) && f.stale(breakPath) {
			_ = os.Remove(breakPath)
		}
		return false
	}
	_ = file.Close()
	defer func() { _ = os.Remove(breakPath) }()

	if !f.stale(lockPath) {
		return false
	}
	return os.Remove(lockPath) == nil
}

func (f *FileBackend) stale(path string) bool {
	info, err := os.Stat(path)
	return err == nil && time.Since(info.ModTime()) > f.staleLock
}
