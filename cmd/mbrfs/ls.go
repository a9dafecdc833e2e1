package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/bobvanderlinden/mbrfs/pkg/partfs"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func lsCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "ls DEVICE",
		Short: "list the partition table of DEVICE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dev, err := partfs.OpenDevice(args[0], true)
			if err != nil {
				return err
			}
			defer dev.Close()
			table, err := mbr.Read(dev.File())
			if err != nil {
				return errors.Wrapf(err, "failed to read MBR from %s (file too small?)", args[0])
			}
			if !table.ValidSignature() {
				sig := table.SignatureBytes()
				log.Warnf("%s: invalid MBR signature %#02x %#02x", args[0], sig[0], sig[1])
			}
			return printTable(cmd.OutOrStdout(), table, all)
		},
	}
	cmd.Flags().BoolVarP(&all, "all", "a", false, "also list empty slots")

	return cmd
}

const lsFormat = "%-4s %-4s %10s %10s %12s %-4s %-20s %-12s %s\n"

func chs(c mbr.CHS) string {
	return fmt.Sprintf("%d/%d/%d", c.Cylinder(), c.Head(), c.Sector())
}

func printTable(out io.Writer, t *mbr.Table, all bool) error {
	if _, err := fmt.Fprintf(out, lsFormat, "name", "boot", "start", "sectors", "size", "id", "type", "first chs", "last chs"); err != nil {
		return err
	}
	for i, e := range t.Entries {
		if e.IsEmpty() && !all {
			continue
		}
		boot := ""
		if e.Bootable() {
			boot = "*"
		}
		_, err := fmt.Fprintf(out, lsFormat,
			partfs.Name(i), boot,
			strconv.FormatUint(uint64(e.FirstSectorLBA), 10),
			strconv.FormatUint(uint64(e.SectorCount), 10),
			strconv.FormatInt(e.Size(), 10),
			fmt.Sprintf("%02x", byte(e.Type)), e.Type.String(),
			chs(e.FirstCHS), chs(e.LastCHS))
		if err != nil {
			return err
		}
	}
	return nil
}
