package storage

import (
	"context"
	"errors"
	"os"
	"time"

	"aitubersync/internal/retry"
)

// errWouldBlock is returned by tryLock when another holder owns the lock.
var errWouldBlock = errors.New("lock held by another process")

// lockPoll paces lock attempts while another process holds the lock.
var lockPoll = retry.Config{
	InitialBackoff: 10 * time.Millisecond,
	MaxBackoff:     200 * time.Millisecond,
	Multiplier:     1.5,
	JitterFraction: 0.2,
}

// FileLock provides advisory file locking for cross-process synchronization.
type FileLock struct {
	path string
	file *os.File
}

// NewFileLock creates a file lock. The lock is not acquired until Lock() is called.
// The lock file will be created at path + ".lock".
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path + ".lock"}
}

// Lock acquires an exclusive lock, polling until timeout elapses.
// Returns ErrLockTimeout if the lock cannot be acquired in time.
func (l *FileLock) Lock(ctx context.Context, timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return &StorageError{Op: "lock", Entity: "file", ID: l.path, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err = retry.Do(ctx, lockPoll, func(err error) bool {
		return errors.Is(err, errWouldBlock)
	}, func(context.Context) error {
		return tryLock(f)
	})
	if err != nil {
		f.Close()
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrLockTimeout
		}
		return &StorageError{Op: "lock", Entity: "file", ID: l.path, Err: err}
	}

	l.file = f
	return nil
}

// Unlock releases the lock and closes the lock file, returning the first
// error from either step.
func (l *FileLock) Unlock() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	err := unlock(f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &StorageError{Op: "unlock", Entity: "file", ID: l.path, Err: err}
	}
	return nil
}
