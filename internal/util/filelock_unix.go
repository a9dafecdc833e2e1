package util

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Lock opens an existing file and takes an exclusive flock on it without
// waiting. Returns ErrLocked if another open description already holds one.
// The lock belongs to its own open file description, so closing other
// descriptors of the same file does not drop it.
func Lock(path string) (*FileLock, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, errors.Wrap(err, "open file")
	}

	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if err == unix.EWOULDBLOCK {
			return nil, ErrLocked
		}
		return nil, errors.Wrap(err, "set lock")
	}

	return &FileLock{file: f}, nil
}

// Unlock releases the lock and closes the file.
func (l *FileLock) Unlock() error {
	if err := unix.Flock(int(l.file.Fd()), unix.LOCK_UN); err != nil {
		_ = l.file.Close()
		return errors.Wrap(err, "unlock")
	}
	return l.file.Close()
}

// CheckLock attempts to detect if the file is locked by someone else.
func CheckLock(path string) (bool, error) {
	l, err := Lock(path)
	if err == ErrLocked {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, l.Unlock()
}
