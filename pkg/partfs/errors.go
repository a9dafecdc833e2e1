package partfs

import (
	"syscall"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned for paths that name no partition slot
	ErrNotFound = errors.New("no such partition")

	// ErrNotSupported is returned for every namespace or metadata mutation
	ErrNotSupported = errors.New("operation not supported")

	// ErrExhausted is returned by open when every handle slot is taken
	ErrExhausted = errors.New("too many open partition files")

	// ErrBadHandle is returned for handles that are out of range or not open
	ErrBadHandle = errors.New("bad partition file handle")

	// ErrOutOfBounds is returned when the bounds policy refuses a transfer
	ErrOutOfBounds = errors.New("transfer outside partition")
)

// Errno converts an error from this package into the errno the filesystem
// protocol expects. Errors from the device keep their native errno.
func Errno(err error) syscall.Errno {
	if err == nil {
		return 0
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return syscall.ENOENT
	case errors.Is(err, ErrNotSupported):
		return syscall.ENOTSUP
	case errors.Is(err, ErrExhausted):
		return syscall.EMFILE
	case errors.Is(err, ErrBadHandle):
		return syscall.EBADF
	case errors.Is(err, ErrOutOfBounds):
		return syscall.EINVAL
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return errno
	}
	return syscall.EIO
}
