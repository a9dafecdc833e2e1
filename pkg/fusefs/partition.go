package fusefs

import (
	"context"
	"syscall"

	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

type partition struct {
	fs.Inode
	unsupported
	pfs   *partfs.FS
	index int
}

var (
	_ = (fs.NodeGetattrer)((*partition)(nil))
	_ = (fs.NodeOpener)((*partition)(nil))
	_ = (fs.NodeAccesser)((*partition)(nil))
	_ = (fs.NodeSetattrer)((*partition)(nil))
)

func (p *partition) Getattr(ctx context.Context, f fs.FileHandle, out *fuse.AttrOut) syscall.Errno {
	fillAttr(p.pfs.PartitionAttr(p.index), partitionIno(p.index), &out.Attr)
	return fs.OK
}

func (p *partition) Access(ctx context.Context, mask uint32) syscall.Errno {
	return fs.OK
}

// Open binds a handle. Page caching is bypassed so every transfer reaches
// the device.
func (p *partition) Open(ctx context.Context, flags uint32) (fs.FileHandle, uint32, syscall.Errno) {
	h, err := p.pfs.OpenIndex(p.index)
	if err != nil {
		return nil, 0, partfs.Errno(err)
	}
	return &file{pfs: p.pfs, h: h, index: p.index}, fuse.FOPEN_DIRECT_IO, fs.OK
}
