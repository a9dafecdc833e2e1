package partfs

import (
	"time"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"golang.org/x/sys/unix"
)

const (
	permMask = unix.S_IRWXU | unix.S_IRWXG | unix.S_IRWXO

	// device number reported for every partition file
	partitionDev = 0x0505
	// partition files carry 0x01NN as rdev, NN being the 1-based slot
	partitionRdevBase = 0x0100
)

// Attr is a stat record for the root directory or one partition file
type Attr struct {
	Dev     uint64
	Ino     uint64
	Mode    uint32
	Nlink   uint32
	Uid     uint32
	Gid     uint32
	Rdev    uint32
	Size    uint64
	Blocks  uint64
	Blksize uint32
	Atime   time.Time
	Mtime   time.Time
	Ctime   time.Time
}

// IsDir reports whether the record describes a directory
func (a Attr) IsDir() bool {
	return a.Mode&unix.S_IFMT == unix.S_IFDIR
}

// RootAttr passes the device's own metadata through for the root
// directory. Only the file kind changes, and every read bit gains the
// matching search bit so the directory can be entered by whoever may read
// the device.
func RootAttr(m Meta) Attr {
	perm := m.Mode & permMask
	perm |= (perm & (unix.S_IRUSR | unix.S_IRGRP | unix.S_IROTH)) >> 2
	return Attr{
		Dev:     m.Dev,
		Ino:     m.Ino,
		Mode:    unix.S_IFDIR | perm,
		Nlink:   2,
		Uid:     m.Uid,
		Gid:     m.Gid,
		Size:    uint64(m.Size),
		Blocks:  uint64(m.Blocks),
		Blksize: m.Blksize,
		Atime:   m.Atime,
		Mtime:   m.Mtime,
		Ctime:   m.Ctime,
	}
}

// BaseAttr is the regular-file record every partition file starts from
func BaseAttr(m Meta) Attr {
	return Attr{
		Dev:     partitionDev,
		Mode:    unix.S_IFREG | m.Mode&permMask,
		Nlink:   1,
		Uid:     m.Uid,
		Gid:     m.Gid,
		Blksize: m.Blksize,
		Atime:   m.Atime,
		Mtime:   m.Mtime,
		Ctime:   m.Ctime,
	}
}

// PartitionAttr overlays the per-slot fields of partition index onto base
func PartitionAttr(t *mbr.Table, index int, base Attr) Attr {
	a := base
	a.Rdev = partitionRdevBase | uint32(index+1)
	a.Ino = uint64(index)
	a.Size = uint64(t.Size(index))
	a.Blocks = a.Size / mbr.SectorSize
	return a
}
