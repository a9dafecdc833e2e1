package fusefs

import (
	"context"
	"syscall"

	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
)

// file is an open partition file
type file struct {
	pfs   *partfs.FS
	h     partfs.Handle
	index int
}

var (
	_ = (fs.FileReader)((*file)(nil))
	_ = (fs.FileWriter)((*file)(nil))
	_ = (fs.FileFsyncer)((*file)(nil))
	_ = (fs.FileReleaser)((*file)(nil))
	_ = (fs.FileAllocater)((*file)(nil))
)

func (f *file) Read(ctx context.Context, dest []byte, off int64) (fuse.ReadResult, syscall.Errno) {
	n, err := f.pfs.Read(f.h, off, dest)
	if err != nil {
		return nil, partfs.Errno(err)
	}
	return fuse.ReadResultData(dest[:n]), fs.OK
}

func (f *file) Write(ctx context.Context, data []byte, off int64) (uint32, syscall.Errno) {
	n, err := f.pfs.Write(f.h, off, data)
	if err != nil {
		return 0, partfs.Errno(err)
	}
	return uint32(n), fs.OK
}

func (f *file) Fsync(ctx context.Context, flags uint32) syscall.Errno {
	return partfs.Errno(f.pfs.Fsync(f.h))
}

func (f *file) Release(ctx context.Context) syscall.Errno {
	return partfs.Errno(f.pfs.Release(f.h))
}

func (f *file) Allocate(ctx context.Context, off uint64, size uint64, mode uint32) syscall.Errno {
	return partfs.Errno(f.pfs.Unsupported(partfs.OpAllocate, partfs.Name(f.index)))
}
