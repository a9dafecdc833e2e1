package partfs

import (
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	typ   byte
	start uint32
	count uint32
}

func bootSector(entries map[int]testEntry, sig []byte) []byte {
	b := make([]byte, mbr.SectorSize)
	for i, e := range entries {
		off := 446 + i*mbr.EntrySize
		b[off+4] = e.typ
		binary.LittleEndian.PutUint32(b[off+8:], e.start)
		binary.LittleEndian.PutUint32(b[off+12:], e.count)
	}
	copy(b[510:], sig)
	return b
}

// pattern is a recognisable byte at every absolute device offset
func pattern(off int64) byte {
	return byte(off*7 + off/512)
}

// writeImage writes a disk image of sectors sectors, filled with pattern
// except for the boot sector
func writeImage(t *testing.T, boot []byte, sectors int64) string {
	t.Helper()
	data := make([]byte, sectors*mbr.SectorSize)
	for i := range data {
		data[i] = pattern(int64(i))
	}
	copy(data, boot)
	path := filepath.Join(t.TempDir(), "disk.img")
	require.NoError(t, os.WriteFile(path, data, 0640))
	return path
}

// scenarioImage has one Linux partition at LBA 2048 of 1024 sectors and
// room for exactly that partition
func scenarioImage(t *testing.T, sig []byte) string {
	return writeImage(t, bootSector(map[int]testEntry{0: {0x83, 2048, 1024}}, sig), 2048+1024)
}

func openFS(t *testing.T, path string, opts Options) *FS {
	t.Helper()
	dev, err := OpenDevice(path, false)
	require.NoError(t, err)
	t.Cleanup(func() { dev.Close() })
	table, err := mbr.Read(dev.File())
	require.NoError(t, err)
	f := New(dev, table, opts)
	t.Cleanup(func() { f.Close() })
	return f
}

func readDevice(t *testing.T, path string, off int64, n int) []byte {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	b := make([]byte, n)
	_, err = f.ReadAt(b, off)
	if err != io.EOF {
		require.NoError(t, err)
	}
	return b
}

// memDevice is an in-memory Channeler that counts open channels
type memDevice struct {
	mu      sync.Mutex
	data    []byte
	open    int
	dups    int
	failDup error
}

func (d *memDevice) Dup() (Channel, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failDup != nil {
		return nil, d.failDup
	}
	d.open++
	d.dups++
	return &memChannel{dev: d}, nil
}

func (d *memDevice) openChannels() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

type memChannel struct {
	dev    *memDevice
	closed bool
}

func (c *memChannel) ReadAt(p []byte, off int64) (int, error) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if off >= int64(len(c.dev.data)) {
		return 0, io.EOF
	}
	n := copy(p, c.dev.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (c *memChannel) WriteAt(p []byte, off int64) (int, error) {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if end := off + int64(len(p)); end > int64(len(c.dev.data)) {
		c.dev.data = append(c.dev.data, make([]byte, end-int64(len(c.dev.data)))...)
	}
	return copy(c.dev.data[off:], p), nil
}

func (c *memChannel) Sync() error {
	return nil
}

func (c *memChannel) Close() error {
	c.dev.mu.Lock()
	defer c.dev.mu.Unlock()
	if !c.closed {
		c.closed = true
		c.dev.open--
	}
	return nil
}
