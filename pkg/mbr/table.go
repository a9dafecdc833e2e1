// Package mbr decodes the primary partition table of a Master Boot Record.
//
// Decoding works on explicit byte offsets of a raw 512-byte sector and never
// depends on the host struct layout or byte order.
package mbr

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

const (
	// SectorSize is the logical sector size used for all offset arithmetic
	SectorSize = 512

	// EntryCount is the number of primary partition slots
	EntryCount = 4

	// EntrySize is the size of one packed partition entry
	EntrySize = 16

	entriesStart   = 446
	signatureStart = 510
)

var (
	// Signature is the boot sector signature expected at bytes 510 and 511
	Signature = []byte{0x55, 0xaa}

	// ErrShortSector is returned when fewer than SectorSize bytes are available
	ErrShortSector = errors.New("boot sector is shorter than 512 bytes")

	// ErrIndex is returned for a partition index outside [0,3]
	ErrIndex = errors.New("partition index out of range")
)

// CHS is a packed cylinder/head/sector address as stored in a partition entry
type CHS [3]byte

// Head of the address
func (c CHS) Head() uint8 {
	return c[0]
}

// Sector of the address, 1-based on well-formed tables
func (c CHS) Sector() uint8 {
	return c[1] & 0x3f
}

// Cylinder of the address; the two high bits live in the sector byte
func (c CHS) Cylinder() uint16 {
	return uint16(c[1]&0xc0)<<2 | uint16(c[2])
}

// Entry is one 16-byte partition table entry
type Entry struct {
	Status         byte
	FirstCHS       CHS
	Type           Type
	LastCHS        CHS
	FirstSectorLBA uint32
	SectorCount    uint32
}

// Bootable reports whether the entry is flagged active
func (e Entry) Bootable() bool {
	return e.Status == 0x80
}

// IsEmpty reports whether the slot is unused
func (e Entry) IsEmpty() bool {
	return e.Type == Empty
}

// Offset returns the byte offset of the partition on the device
func (e Entry) Offset() int64 {
	return int64(e.FirstSectorLBA) * SectorSize
}

// Size returns the byte size of the partition
func (e Entry) Size() int64 {
	return int64(e.SectorCount) * SectorSize
}

func entryFromBytes(b []byte) Entry {
	e := Entry{
		Status:         b[0],
		Type:           Type(b[4]),
		FirstSectorLBA: binary.LittleEndian.Uint32(b[8:12]),
		SectorCount:    binary.LittleEndian.Uint32(b[12:16]),
	}
	copy(e.FirstCHS[:], b[1:4])
	copy(e.LastCHS[:], b[5:8])
	return e
}

// Table is the decoded primary partition table.
// It always holds exactly EntryCount slots, empty ones included.
type Table struct {
	Entries   [EntryCount]Entry
	signature [2]byte
}

// Decode decodes a raw boot sector. A missing signature is not an error;
// callers check ValidSignature and decide how loud to be about it.
func Decode(sector []byte) (*Table, error) {
	if len(sector) != SectorSize {
		return nil, errors.Wrapf(ErrShortSector, "got %d bytes", len(sector))
	}
	t := &Table{}
	for i := 0; i < EntryCount; i++ {
		start := entriesStart + i*EntrySize
		t.Entries[i] = entryFromBytes(sector[start : start+EntrySize])
	}
	copy(t.signature[:], sector[signatureStart:])
	return t, nil
}

// Read reads and decodes the boot sector at the start of r
func Read(r io.ReaderAt) (*Table, error) {
	b := make([]byte, SectorSize)
	n, err := r.ReadAt(b, 0)
	if n < SectorSize {
		if err == nil || err == io.EOF {
			return nil, errors.Wrapf(ErrShortSector, "read only %d bytes", n)
		}
		return nil, errors.Wrap(err, "error reading boot sector")
	}
	return Decode(b)
}

// ValidSignature reports whether the sector carried 0x55 0xAA
func (t *Table) ValidSignature() bool {
	return bytes.Equal(t.signature[:], Signature)
}

// SignatureBytes returns the two signature bytes as found on disk
func (t *Table) SignatureBytes() [2]byte {
	return t.signature
}

// Entry returns the entry at index i
func (t *Table) Entry(i int) (Entry, error) {
	if i < 0 || i >= EntryCount {
		return Entry{}, errors.Wrapf(ErrIndex, "index %d", i)
	}
	return t.Entries[i], nil
}

// IsEmpty reports whether slot i is unused. Out-of-range slots count as empty.
func (t *Table) IsEmpty(i int) bool {
	e, err := t.Entry(i)
	return err != nil || e.IsEmpty()
}

// Offset returns the byte offset of partition i, or 0 for an out-of-range index
func (t *Table) Offset(i int) int64 {
	e, _ := t.Entry(i)
	return e.Offset()
}

// Size returns the byte size of partition i, or 0 for an out-of-range index
func (t *Table) Size(i int) int64 {
	e, _ := t.Entry(i)
	return e.Size()
}

// Used returns the indices of the non-empty slots in ascending order
func (t *Table) Used() []int {
	var used []int
	for i := range t.Entries {
		if !t.Entries[i].IsEmpty() {
			used = append(used, i)
		}
	}
	return used
}
