// Package fusefs serves a partfs.FS over FUSE with go-fuse.
package fusefs

import (
	"context"
	"strings"
	"syscall"

	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/pkg/errors"
	"github.com/pkg/xattr"
)

// Root is the directory node holding one file per partition
type Root struct {
	fs.Inode
	unsupported
	pfs *partfs.FS
}

var (
	_ = (fs.NodeGetattrer)((*Root)(nil))
	_ = (fs.NodeReaddirer)((*Root)(nil))
	_ = (fs.NodeLookuper)((*Root)(nil))
	_ = (fs.NodeAccesser)((*Root)(nil))
	_ = (fs.NodeStatfser)((*Root)(nil))
	_ = (fs.NodeGetxattrer)((*Root)(nil))
	_ = (fs.NodeListxattrer)((*Root)(nil))
	_ = (fs.NodeSetxattrer)((*Root)(nil))
	_ = (fs.NodeRemovexattrer)((*Root)(nil))
	_ = (fs.NodeMkdirer)((*Root)(nil))
)

// NewRoot creates the root node for pfs
func NewRoot(pfs *partfs.FS) *Root {
	return &Root{unsupported: unsupported{pfs: pfs}, pfs: pfs}
}

func (r *Root) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(r.pfs.RootAttr(), rootIno, &out.Attr)
	return fs.OK
}

func (r *Root) Readdir(ctx context.Context) (fs.DirStream, syscall.Errno) {
	var entries []fuse.DirEntry
	r.pfs.ReadDir(func(name string, index int, attr partfs.Attr) bool {
		entries = append(entries, fuse.DirEntry{
			Name: name,
			Mode: attr.Mode,
			Ino:  partitionIno(index),
		})
		return true
	})
	return fs.NewListDirStream(entries), fs.OK
}

// Lookup finds any slot by name, empty ones included, so an empty slot can
// be opened even though the listing leaves it out
func (r *Root) Lookup(ctx context.Context, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	index, err := r.pfs.Lookup(name)
	if err != nil {
		return nil, partfs.Errno(err)
	}
	ino := partitionIno(index)
	fillAttr(r.pfs.PartitionAttr(index), ino, &out.Attr)
	node := &partition{unsupported: r.unsupported, pfs: r.pfs, index: index}
	return r.NewInode(ctx, node, fs.StableAttr{Mode: fuse.S_IFREG, Ino: ino}), fs.OK
}

func (r *Root) Access(ctx context.Context, mask uint32) syscall.Errno {
	return partfs.Errno(r.pfs.Access("/"))
}

func (r *Root) Statfs(ctx context.Context, out *fuse.StatfsOut) syscall.Errno {
	st := r.pfs.Statfs()
	out.Blocks = st.Blocks
	out.Bfree = st.Bfree
	out.Bavail = st.Bavail
	out.Files = st.Files
	out.Ffree = st.Ffree
	out.Bsize = st.Bsize
	out.Frsize = st.Bsize
	out.NameLen = st.NameLen
	return fs.OK
}

// Extended attributes of the root are those of the backing device.

func xattrErrno(err error) syscall.Errno {
	var xe *xattr.Error
	if errors.As(err, &xe) {
		err = xe.Err
	}
	return partfs.Errno(err)
}

func (r *Root) Getxattr(ctx context.Context, attr string, dest []byte) (uint32, syscall.Errno) {
	val, err := xattr.Get(r.pfs.Device().Path(), attr)
	if err != nil {
		return 0, xattrErrno(err)
	}
	sz := uint32(len(val))
	if len(dest) == 0 {
		return sz, fs.OK
	}
	if len(dest) < len(val) {
		return sz, syscall.ERANGE
	}
	return uint32(copy(dest, val)), fs.OK
}

func (r *Root) Listxattr(ctx context.Context, dest []byte) (uint32, syscall.Errno) {
	names, err := xattr.List(r.pfs.Device().Path())
	if err != nil {
		return 0, xattrErrno(err)
	}
	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(0)
	}
	sz := uint32(b.Len())
	if len(dest) == 0 {
		return sz, fs.OK
	}
	if len(dest) < b.Len() {
		return sz, syscall.ERANGE
	}
	return uint32(copy(dest, b.String())), fs.OK
}

func (r *Root) Setxattr(ctx context.Context, attr string, data []byte, flags uint32) syscall.Errno {
	return xattrErrno(xattr.SetWithFlags(r.pfs.Device().Path(), attr, data, int(flags)))
}

func (r *Root) Removexattr(ctx context.Context, attr string) syscall.Errno {
	return xattrErrno(xattr.Remove(r.pfs.Device().Path(), attr))
}
