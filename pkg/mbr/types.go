package mbr

import (
	"fmt"

	diskmbr "github.com/diskfs/go-diskfs/partition/mbr"
)

// Type is the partition type byte of an entry
type Type byte

// Empty marks an unused slot
const Empty = Type(diskmbr.Empty)

var typeNames = map[diskmbr.Type]string{
	diskmbr.Empty:         "Empty",
	diskmbr.Fat12:         "FAT12",
	diskmbr.XenixRoot:     "XENIX root",
	diskmbr.XenixUsr:      "XENIX usr",
	diskmbr.Fat16:         "FAT16 <32M",
	diskmbr.ExtendedCHS:   "Extended",
	diskmbr.Fat16b:        "FAT16",
	diskmbr.NTFS:          "HPFS/NTFS/exFAT",
	diskmbr.CommodoreFAT:  "AIX",
	diskmbr.Fat32CHS:      "W95 FAT32",
	diskmbr.Fat32LBA:      "W95 FAT32 (LBA)",
	diskmbr.Fat16bLBA:     "W95 FAT16 (LBA)",
	diskmbr.ExtendedLBA:   "W95 Ext'd (LBA)",
	diskmbr.LinuxSwap:     "Linux swap",
	diskmbr.Linux:         "Linux",
	diskmbr.LinuxExtended: "Linux extended",
	diskmbr.LinuxLVM:      "Linux LVM",
	diskmbr.Iso9660:       "ISO9660",
	diskmbr.MacOSXUFS:     "Darwin UFS",
	diskmbr.MacOSXBoot:    "Darwin boot",
	diskmbr.HFS:           "HFS / HFS+",
	diskmbr.Solaris8Boot:  "Solaris boot",
	diskmbr.GPTProtective: "GPT",
	diskmbr.EFISystem:     "EFI (FAT-12/16/32)",
	diskmbr.VMWareFS:      "VMware VMFS",
	diskmbr.VMWareSwap:    "VMware VMKCORE",
}

// String returns the sfdisk-style name of the type, or its hex code when unknown
func (t Type) String() string {
	if name, ok := typeNames[diskmbr.Type(t)]; ok {
		return name
	}
	return fmt.Sprintf("unknown (%#02x)", byte(t))
}

// Extended reports whether the type points at a chain of logical partitions.
// Such slots are still exposed as raw windows; their contents are not followed.
func (t Type) Extended() bool {
	switch diskmbr.Type(t) {
	case diskmbr.ExtendedCHS, diskmbr.ExtendedLBA, diskmbr.LinuxExtended:
		return true
	}
	return false
}
