package fusefs

import (
	"time"

	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/hanwen/go-fuse/v2/fs"
	"github.com/hanwen/go-fuse/v2/fuse"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DefaultTimeout is how long the kernel may cache entries and attributes
const DefaultTimeout = time.Second

// Options control the FUSE mount
type Options struct {
	AllowOther bool
	ReadOnly   bool
	// Debug logs every FUSE request
	Debug bool
	// Timeout for entry and attribute caching, DefaultTimeout when zero
	Timeout time.Duration
	// Extra are passed on as -o options
	Extra []string
	// DirectMount calls mount(2) itself, which needs root, before falling
	// back to fusermount
	DirectMount bool
}

func (o Options) mountOptions(pfs *partfs.FS) *fs.Options {
	timeout := o.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	extra := append([]string(nil), o.Extra...)
	if o.ReadOnly {
		extra = append(extra, "ro")
	}
	return &fs.Options{
		MountOptions: fuse.MountOptions{
			AllowOther:  o.AllowOther,
			FsName:      pfs.Device().Path(),
			Name:        "mbrfs",
			Debug:       o.Debug,
			Options:     extra,
			DirectMount: o.DirectMount,
		},
		AttrTimeout:  &timeout,
		EntryTimeout: &timeout,
	}
}

// Mount serves pfs at mountpoint. The returned server is already running;
// callers Wait on it and Unmount it.
func Mount(mountpoint string, pfs *partfs.FS, opts Options) (*fuse.Server, error) {
	server, err := fs.Mount(mountpoint, NewRoot(pfs), opts.mountOptions(pfs))
	if err != nil {
		return nil, errors.Wrapf(err, "mount %s on %s", pfs.Device().Path(), mountpoint)
	}
	log.WithFields(log.Fields{"device": pfs.Device().Path(), "mountpoint": mountpoint}).Info("mounted")
	return server, nil
}
