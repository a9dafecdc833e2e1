package partfs

import (
	"testing"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// two adjacent 4-sector partitions at LBA 1 and LBA 5, on a 12-sector device
func routerFixture(t *testing.T, policy BoundsPolicy) (*Router, *HandleTable, *memDevice) {
	t.Helper()
	dev := &memDevice{data: make([]byte, 12*mbr.SectorSize)}
	for i := range dev.data {
		dev.data[i] = pattern(int64(i))
	}
	table, err := mbr.Decode(bootSector(map[int]testEntry{
		0: {0x83, 1, 4},
		1: {0x83, 5, 4},
	}, mbr.Signature))
	require.NoError(t, err)
	handles := NewHandleTable(dev, 4)
	return NewRouter(table, handles, policy), handles, dev
}

func expected(off int64, n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = pattern(off + int64(i))
	}
	return b
}

func TestRouterRead(t *testing.T) {
	r, handles, _ := routerFixture(t, Passthrough)
	h, err := handles.Allocate(1)
	require.NoError(t, err)

	buf := make([]byte, 100)
	n, err := r.Read(h, 10, buf)
	require.NoError(t, err)
	assert.Equal(t, 100, n)
	assert.Equal(t, expected(5*512+10, 100), buf)
}

func TestRouterWriteThenRead(t *testing.T) {
	r, handles, dev := routerFixture(t, Passthrough)
	h, err := handles.Allocate(0)
	require.NoError(t, err)

	data := []byte("partition payload")
	n, err := r.Write(h, 300, data)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, dev.data[512+300:512+300+len(data)])

	buf := make([]byte, len(data))
	n, err = r.Read(h, 300, buf)
	require.NoError(t, err)
	assert.Equal(t, len(data), n)
	assert.Equal(t, data, buf)
}

func TestRouterPassthroughCrossesPartitions(t *testing.T) {
	r, handles, _ := routerFixture(t, Passthrough)
	h, err := handles.Allocate(0)
	require.NoError(t, err)

	// the last 12 bytes of partition 1 and the first 20 of partition 2
	buf := make([]byte, 32)
	n, err := r.Read(h, 4*512-12, buf)
	require.NoError(t, err)
	assert.Equal(t, 32, n)
	assert.Equal(t, expected(5*512-12, 32), buf)
}

func TestRouterShortReadAtDeviceEnd(t *testing.T) {
	r, handles, _ := routerFixture(t, Passthrough)
	h, err := handles.Allocate(1)
	require.NoError(t, err)

	// partition 2 ends at sector 9, the device at sector 12
	buf := make([]byte, 1024)
	n, err := r.Read(h, 6*512, buf)
	require.NoError(t, err)
	assert.Equal(t, 512, n)

	n, err = r.Read(h, 7*512, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestRouterClamp(t *testing.T) {
	r, handles, dev := routerFixture(t, Clamp)
	h, err := handles.Allocate(0)
	require.NoError(t, err)

	buf := make([]byte, 32)
	n, err := r.Read(h, 4*512-12, buf)
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.Equal(t, expected(5*512-12, 12), buf[:12])

	n, err = r.Read(h, 4*512, buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	before := append([]byte(nil), dev.data[5*512:5*512+8]...)
	n, err = r.Write(h, 4*512-4, []byte("12345678"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, []byte("1234"), dev.data[5*512-4:5*512])
	assert.Equal(t, before, dev.data[5*512:5*512+8], "neighbouring partition untouched")

	_, err = r.Write(h, 4*512, []byte("x"))
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRouterReject(t *testing.T) {
	r, handles, _ := routerFixture(t, Reject)
	h, err := handles.Allocate(0)
	require.NoError(t, err)

	buf := make([]byte, 32)
	n, err := r.Read(h, 4*512-32, buf)
	require.NoError(t, err)
	assert.Equal(t, 32, n)

	_, err = r.Read(h, 4*512-12, buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.Write(h, 4*512-12, buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	_, err = r.Read(h, -1, buf)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestRouterBadHandle(t *testing.T) {
	r, _, _ := routerFixture(t, Passthrough)
	_, err := r.Read(3, 0, make([]byte, 1))
	assert.ErrorIs(t, err, ErrBadHandle)
	_, err = r.Write(7, 0, []byte{1})
	assert.ErrorIs(t, err, ErrBadHandle)
	assert.ErrorIs(t, r.Fsync(0), ErrBadHandle)
}

func TestParseBoundsPolicy(t *testing.T) {
	for _, p := range []BoundsPolicy{Passthrough, Clamp, Reject} {
		got, err := ParseBoundsPolicy(p.String())
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	got, err := ParseBoundsPolicy("CLAMP")
	require.NoError(t, err)
	assert.Equal(t, Clamp, got)

	_, err = ParseBoundsPolicy("truncate")
	assert.Error(t, err)
	assert.Equal(t, "unknown", BoundsPolicy(9).String())
}
