// Package partfs maps the primary partitions of a device onto the files of
// a flat virtual filesystem.
//
// An FS is built once at startup from an opened Device and its decoded
// partition table; every filesystem request goes through it. The handle
// table is the only mutable state and is safe for concurrent use. Reads
// and writes on distinct handles run concurrently.
package partfs

import (
	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Options configure an FS
type Options struct {
	// Handles is the handle table capacity, DefaultHandles when zero
	Handles int
	// Bounds is the policy applied to transfers leaving a partition
	Bounds BoundsPolicy
}

// Statfs is the filesystem summary reported for the mount
type Statfs struct {
	Blocks  uint64
	Bfree   uint64
	Bavail  uint64
	Files   uint64
	Ffree   uint64
	Bsize   uint32
	NameLen uint32
}

// FS is the shared context of a mounted device
type FS struct {
	dev     *Device
	table   *mbr.Table
	root    Attr
	base    Attr
	handles *HandleTable
	router  *Router
}

// New creates the context for dev, whose boot sector decoded to table
func New(dev *Device, table *mbr.Table, opts Options) *FS {
	handles := NewHandleTable(dev, opts.Handles)
	return &FS{
		dev:     dev,
		table:   table,
		root:    RootAttr(dev.Meta()),
		base:    BaseAttr(dev.Meta()),
		handles: handles,
		router:  NewRouter(table, handles, opts.Bounds),
	}
}

// Table returns the partition table
func (f *FS) Table() *mbr.Table {
	return f.table
}

// Device returns the backing device
func (f *FS) Device() *Device {
	return f.dev
}

// Handles returns the handle table
func (f *FS) Handles() *HandleTable {
	return f.handles
}

// RootAttr returns the attributes of the root directory
func (f *FS) RootAttr() Attr {
	return f.root
}

// PartitionAttr returns the attributes of partition file index
func (f *FS) PartitionAttr(index int) Attr {
	return PartitionAttr(f.table, index, f.base)
}

// Lookup resolves path to a partition index. Empty slots resolve too.
func (f *FS) Lookup(path string) (int, error) {
	t := Resolve(path)
	if t.Kind != Partition {
		return 0, errors.Wrapf(ErrNotFound, "%q", path)
	}
	return t.Index, nil
}

// Getattr returns the attributes of the root or a partition file
func (f *FS) Getattr(path string) (Attr, error) {
	t := Resolve(path)
	switch t.Kind {
	case Root:
		return f.root, nil
	case Partition:
		return f.PartitionAttr(t.Index), nil
	}
	return Attr{}, errors.Wrapf(ErrNotFound, "%q", path)
}

// Access checks that path exists. Permission checks are left to the kernel.
func (f *FS) Access(path string) error {
	if Resolve(path).Kind == Invalid {
		return errors.Wrapf(ErrNotFound, "%q", path)
	}
	return nil
}

// ReadDir calls fill for each non-empty partition in ascending order and
// stops early when fill returns false
func (f *FS) ReadDir(fill func(name string, index int, attr Attr) bool) {
	for _, i := range f.table.Used() {
		if !fill(Name(i), i, f.PartitionAttr(i)) {
			return
		}
	}
}

// Names returns the names in the root directory listing
func (f *FS) Names() []string {
	var names []string
	f.ReadDir(func(name string, _ int, _ Attr) bool {
		names = append(names, name)
		return true
	})
	return names
}

// Open opens the partition file at path
func (f *FS) Open(path string) (Handle, error) {
	index, err := f.Lookup(path)
	if err != nil {
		return 0, err
	}
	return f.OpenIndex(index)
}

// OpenIndex opens partition index
func (f *FS) OpenIndex(index int) (Handle, error) {
	if _, err := f.table.Entry(index); err != nil {
		return 0, errors.Wrap(ErrNotFound, err.Error())
	}
	h, err := f.handles.Allocate(index)
	if err != nil {
		log.WithError(err).WithField("partition", index+1).Warn("open failed")
		return 0, err
	}
	log.WithFields(log.Fields{"partition": index + 1, "handle": h}).Debug("open")
	return h, nil
}

// Read reads from the partition file behind h
func (f *FS) Read(h Handle, off int64, dest []byte) (int, error) {
	return f.router.Read(h, off, dest)
}

// Write writes to the partition file behind h
func (f *FS) Write(h Handle, off int64, data []byte) (int, error) {
	return f.router.Write(h, off, data)
}

// Fsync flushes the partition file behind h
func (f *FS) Fsync(h Handle) error {
	return f.router.Fsync(h)
}

// Release closes h
func (f *FS) Release(h Handle) error {
	log.WithField("handle", h).Debug("release")
	return f.handles.Release(h)
}

// Statfs summarises the device: one block per sector, one file per
// non-empty partition, nothing free
func (f *FS) Statfs() Statfs {
	return Statfs{
		Blocks:  uint64(f.dev.Size()) / mbr.SectorSize,
		Files:   uint64(len(f.table.Used())),
		Bsize:   mbr.SectorSize,
		NameLen: 1,
	}
}

// Unsupported rejects op on path
func (f *FS) Unsupported(op Op, path string) error {
	log.WithFields(log.Fields{"op": op, "path": path}).Debug("operation not supported")
	return errors.Wrapf(ErrNotSupported, "%s %s", op, path)
}

// Close releases every open handle. The device itself is closed by its owner.
func (f *FS) Close() error {
	return f.handles.Close()
}
