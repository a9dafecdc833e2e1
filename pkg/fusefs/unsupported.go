package fusefs

import (
	"context"
	"syscall"

	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// unsupported answers every namespace and metadata mutation with ENOTSUP.
// Nodes embed it next to fs.Inode.
type unsupported struct {
	pfs *partfs.FS
}

var (
	_ = (fs.NodeMknoder)((*unsupported)(nil))
	_ = (fs.NodeMkdirer)((*unsupported)(nil))
	_ = (fs.NodeUnlinker)((*unsupported)(nil))
	_ = (fs.NodeRmdirer)((*unsupported)(nil))
	_ = (fs.NodeSymlinker)((*unsupported)(nil))
	_ = (fs.NodeRenamer)((*unsupported)(nil))
	_ = (fs.NodeLinker)((*unsupported)(nil))
	_ = (fs.NodeCreater)((*unsupported)(nil))
	_ = (fs.NodeSetattrer)((*unsupported)(nil))
	_ = (fs.NodeReadlinker)((*unsupported)(nil))
)

func (u unsupported) reject(op partfs.Op, name string) syscall.Errno {
	return partfs.Errno(u.pfs.Unsupported(op, name))
}

func (u unsupported) Mknod(ctx context.Context, name string, mode uint32, dev uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, u.reject(partfs.OpMknod, name)
}

func (u unsupported) Mkdir(ctx context.Context, name string, mode uint32, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, u.reject(partfs.OpMkdir, name)
}

func (u unsupported) Unlink(ctx context.Context, name string) syscall.Errno {
	return u.reject(partfs.OpUnlink, name)
}

func (u unsupported) Rmdir(ctx context.Context, name string) syscall.Errno {
	return u.reject(partfs.OpRmdir, name)
}

func (u unsupported) Symlink(ctx context.Context, target, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, u.reject(partfs.OpSymlink, name)
}

func (u unsupported) Rename(ctx context.Context, name string, newParent fs.InodeEmbedder, newName string, flags uint32) syscall.Errno {
	return u.reject(partfs.OpRename, name)
}

func (u unsupported) Link(ctx context.Context, target fs.InodeEmbedder, name string, out *fuse.EntryOut) (*fs.Inode, syscall.Errno) {
	return nil, u.reject(partfs.OpLink, name)
}

func (u unsupported) Create(ctx context.Context, name string, flags uint32, mode uint32, out *fuse.EntryOut) (*fs.Inode, fs.FileHandle, uint32, syscall.Errno) {
	return nil, nil, 0, u.reject(partfs.OpCreate, name)
}

// Setattr covers chmod, chown, truncate and utimens
func (u unsupported) Setattr(ctx context.Context, f fs.FileHandle, in *fuse.SetAttrIn, out *fuse.AttrOut) syscall.Errno {
	return u.reject(partfs.OpSetattr, "")
}

func (u unsupported) Readlink(ctx context.Context) ([]byte, syscall.Errno) {
	return nil, u.reject(partfs.OpReadlink, "")
}
