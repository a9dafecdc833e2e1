package fusefs

import (
	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// FUSE reserves inode 1 for the root and 0 for "unknown", so partition
// index i is exported as inode i+2.
const (
	rootIno      = 1
	firstFileIno = 2
)

func partitionIno(index int) uint64 {
	return uint64(index) + firstFileIno
}

func fillAttr(a partfs.Attr, ino uint64, out *fuse.Attr) {
	out.Ino = ino
	out.Mode = a.Mode
	out.Nlink = a.Nlink
	out.Size = a.Size
	out.Blocks = a.Blocks
	out.Blksize = a.Blksize
	out.Rdev = a.Rdev
	out.Owner = fuse.Owner{Uid: a.Uid, Gid: a.Gid}
	out.SetTimes(&a.Atime, &a.Mtime, &a.Ctime)
}
