package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bobvanderlinden/mbrfs/internal/util"
	"github.com/bobvanderlinden/mbrfs/pkg/fusefs"
	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type mountOptions struct {
	handles    int
	bounds     string
	allowOther bool
	readOnly   bool
	strict     bool
	noLock     bool
	fuseDebug  bool
	direct     bool
	options    []string
}

// applyConfig fills every option whose flag was not given from cfg
func (o *mountOptions) applyConfig(cfg MountConfig, changed func(name string) bool) {
	if !changed("handles") && cfg.Handles != 0 {
		o.handles = cfg.Handles
	}
	if !changed("bounds") && cfg.Bounds != "" {
		o.bounds = cfg.Bounds
	}
	if !changed("allow-other") && cfg.AllowOther {
		o.allowOther = true
	}
	if !changed("read-only") && cfg.ReadOnly {
		o.readOnly = true
	}
	if !changed("strict") && cfg.Strict {
		o.strict = true
	}
	if !changed("no-lock") && cfg.NoLock {
		o.noLock = true
	}
	if !changed("options") && len(cfg.Options) > 0 {
		o.options = cfg.Options
	}
}

func mountCmd() *cobra.Command {
	var opts mountOptions
	cmd := &cobra.Command{
		Use:   "mount DEVICE MOUNTPOINT",
		Short: "mount the partitions of DEVICE as files under MOUNTPOINT",
		Long: `Mount the four primary partitions of the MBR on DEVICE as files named 1 to 4
under MOUNTPOINT. Empty slots are not listed. Runs in the foreground until
interrupted, then unmounts.`,
		Args:    cobra.ExactArgs(2),
		Example: "mbrfs mount /dev/sdb /mnt/sdb",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.applyConfig(Config.Mount, func(name string) bool { return cmd.Flags().Changed(name) })
			return mount(args[0], args[1], opts)
		},
	}
	cmd.Flags().IntVar(&opts.handles, "handles", partfs.DefaultHandles, "Maximum number of simultaneously open partition files")
	cmd.Flags().StringVar(&opts.bounds, "bounds", partfs.Passthrough.String(), "What to do with transfers past the end of a partition: passthrough, clamp or reject")
	cmd.Flags().BoolVar(&opts.allowOther, "allow-other", false, "Allow other users to access the mount")
	cmd.Flags().BoolVar(&opts.readOnly, "read-only", false, "Open the device and the mount read-only")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Refuse partition tables with a bad signature or status byte")
	cmd.Flags().BoolVar(&opts.noLock, "no-lock", false, "Do not take an exclusive lock on the device")
	cmd.Flags().BoolVar(&opts.fuseDebug, "fuse-debug", false, "Log every FUSE request, shown at -v 2 and above")
	cmd.Flags().BoolVar(&opts.direct, "direct-mount", false, "Call mount(2) directly instead of fusermount, needs root")
	cmd.Flags().StringArrayVarP(&opts.options, "options", "o", nil, "Extra mount options, can be provided multiple times")

	return cmd
}

// openTable opens the device, locks it unless told not to, and decodes its
// partition table. Everything it returns must be closed by the caller.
func openTable(path string, opts mountOptions) (*partfs.Device, *util.FileLock, *mbr.Table, error) {
	var lock *util.FileLock
	if !opts.noLock {
		l, err := util.Lock(path)
		if errors.Is(err, util.ErrLocked) {
			return nil, nil, nil, errors.Errorf("%s is in use by another mbrfs", path)
		}
		if err != nil {
			return nil, nil, nil, err
		}
		lock = l
	}
	fail := func(err error) (*partfs.Device, *util.FileLock, *mbr.Table, error) {
		if lock != nil {
			lock.Unlock()
		}
		return nil, nil, nil, err
	}

	dev, err := partfs.OpenDevice(path, opts.readOnly)
	if err != nil {
		return fail(err)
	}
	table, err := mbr.Read(dev.File())
	if err != nil {
		dev.Close()
		return fail(errors.Wrapf(err, "failed to read MBR from %s (file too small?)", path))
	}
	if !table.ValidSignature() {
		sig := table.SignatureBytes()
		log.Warnf("%s: invalid MBR signature %#02x %#02x, continuing", path, sig[0], sig[1])
	}
	if opts.strict {
		if err := mbr.Validate(dev.File()); err != nil {
			dev.Close()
			return fail(err)
		}
	}
	for _, i := range table.Used() {
		e, _ := table.Entry(i)
		log.WithFields(log.Fields{
			"partition": i + 1,
			"type":      e.Type,
			"offset":    e.Offset(),
			"size":      e.Size(),
		}).Debug("partition")
	}
	return dev, lock, table, nil
}

func mount(device, mountpoint string, opts mountOptions) error {
	policy, err := partfs.ParseBoundsPolicy(opts.bounds)
	if err != nil {
		return err
	}
	fi, err := os.Stat(mountpoint)
	if err != nil {
		return errors.Wrap(err, "mountpoint")
	}
	if !fi.IsDir() {
		return errors.Errorf("mountpoint %s is not a directory", mountpoint)
	}

	dev, lock, table, err := openTable(device, opts)
	if err != nil {
		return err
	}
	defer func() {
		if lock != nil {
			lock.Unlock()
		}
	}()
	defer dev.Close()

	pfs := partfs.New(dev, table, partfs.Options{Handles: opts.handles, Bounds: policy})
	defer pfs.Close()

	server, err := fusefs.Mount(mountpoint, pfs, fusefs.Options{
		AllowOther:  opts.allowOther,
		ReadOnly:    opts.readOnly,
		Debug:       opts.fuseDebug,
		Extra:       opts.options,
		DirectMount: opts.direct,
	})
	if err != nil {
		return err
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	err = serve(server, mountpoint, sigs, func() { signal.Stop(sigs) })
	log.Debugf("%s unmounted, %d handles still open", mountpoint, pfs.Handles().InUse())
	return err
}

// mountedServer is the part of *fuse.Server the serve loop drives
type mountedServer interface {
	Wait()
	Unmount() error
}

// serve runs until the filesystem is unmounted, either externally or by us
// when a signal arrives on sigs. If that unmount fails, typically with EBUSY
// while a partition file is still open, release is called so the next
// signal gets its default action and terminates the process.
func serve(server mountedServer, mountpoint string, sigs <-chan os.Signal, release func()) error {
	done := make(chan struct{})
	var g errgroup.Group
	g.Go(func() error {
		server.Wait()
		close(done)
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-done:
				return nil
			case s := <-sigs:
				log.Infof("received %s, unmounting %s", s, mountpoint)
				err := server.Unmount()
				if err == nil {
					return nil
				}
				log.WithError(err).Errorf("unmount %s failed, close open partition files or signal again to quit", mountpoint)
				release()
				sigs = nil
			}
		}
	})
	return g.Wait()
}
