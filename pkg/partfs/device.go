package partfs

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
	times "gopkg.in/djherbis/times.v1"
)

// Channel is one independent read-write channel onto the backing device.
// Transfers are positional, so channels never share a cursor.
type Channel interface {
	io.ReaderAt
	io.WriterAt
	Sync() error
	Close() error
}

// Channeler hands out new channels onto the same device
type Channeler interface {
	Dup() (Channel, error)
}

// Meta is the metadata snapshot of the backing device, taken once at open
type Meta struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Rdev    uint64
	Size    int64
	Blocks  int64
	Blksize uint32
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
}

// Device is the backing storage: a block device or a disk image
type Device struct {
	path string
	file *os.File
	meta Meta
	size int64
}

// OpenDevice stats and opens the device at path. It opens read-write
// unless readOnly is set.
func OpenDevice(path string, readOnly bool) (*Device, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, errors.Wrapf(err, "device %s does not exist", path)
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, errors.Wrapf(err, "failed to stat %s", path)
	}

	flag := os.O_RDWR
	if readOnly {
		flag = os.O_RDONLY
	}
	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}

	// block devices report a zero size in stat, ask the device instead
	size, err := f.Seek(0, io.SeekEnd)
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "failed to determine size of %s", path)
	}

	return &Device{
		path: path,
		file: f,
		meta: metaFromStat(&st, times.Get(fi)),
		size: size,
	}, nil
}

func metaFromStat(st *unix.Stat_t, ts times.Timespec) Meta {
	m := Meta{
		Dev:     uint64(st.Dev),
		Ino:     uint64(st.Ino),
		Mode:    uint32(st.Mode),
		Nlink:   uint32(st.Nlink),
		Uid:     st.Uid,
		Gid:     st.Gid,
		Rdev:    uint64(st.Rdev),
		Size:    st.Size,
		Blocks:  st.Blocks,
		Blksize: uint32(st.Blksize),
		Atime:   ts.AccessTime(),
		Mtime:   ts.ModTime(),
	}
	if ts.HasChangeTime() {
		m.Ctime = ts.ChangeTime()
	} else {
		m.Ctime = m.Mtime
	}
	return m
}

// Path the device was opened from
func (d *Device) Path() string {
	return d.path
}

// File is the shared channel, used for the boot sector read at startup
func (d *Device) File() *os.File {
	return d.file
}

// Meta returns the metadata snapshot
func (d *Device) Meta() Meta {
	return d.meta
}

// Size returns the byte size of the device
func (d *Device) Size() int64 {
	return d.size
}

// Dup returns a duplicate of the shared descriptor. The duplicate shares
// the open file description, but every transfer is positional, so handles
// do not interfere with each other.
func (d *Device) Dup() (Channel, error) {
	fd, err := unix.Dup(int(d.file.Fd()))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to duplicate %s", d.path)
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), d.path), nil
}

// Close closes the shared channel. Duplicates stay usable until closed.
func (d *Device) Close() error {
	return d.file.Close()
}
