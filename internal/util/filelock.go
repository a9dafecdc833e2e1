package util

import (
	"os"

	"github.com/pkg/errors"
)

// ErrLocked is returned by Lock when another process holds the lock
var ErrLocked = errors.New("file is locked by another process")

// FileLock is an advisory lock on a file, held until Unlock
type FileLock struct {
	file *os.File
}
