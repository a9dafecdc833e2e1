package mbr

import (
	diskmbr "github.com/diskfs/go-diskfs/partition/mbr"
	"github.com/diskfs/go-diskfs/util"
	"github.com/pkg/errors"
)

// Validate re-reads the table with go-diskfs, which is strict about the
// signature and the status byte of every slot. It is used to refuse devices
// whose table would not survive a standard partitioning tool.
func Validate(f util.File) error {
	if _, err := diskmbr.Read(f, SectorSize, SectorSize); err != nil {
		return errors.Wrap(err, "strict partition table check failed")
	}
	return nil
}
