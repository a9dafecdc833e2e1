package partfs

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleAllocateRelease(t *testing.T) {
	dev := &memDevice{}
	h := NewHandleTable(dev, 4)

	a, err := h.Allocate(0)
	require.NoError(t, err)
	b, err := h.Allocate(2)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
	assert.Equal(t, 2, h.InUse())
	assert.Equal(t, 2, dev.openChannels())

	of, err := h.Lookup(b)
	require.NoError(t, err)
	assert.Equal(t, 2, of.Index)

	require.NoError(t, h.Release(a))
	require.NoError(t, h.Release(b))
	assert.Equal(t, 0, h.InUse())
	assert.Equal(t, 0, dev.openChannels())

	_, err = h.Lookup(a)
	assert.ErrorIs(t, err, ErrBadHandle)
}

func TestHandleExhaustion(t *testing.T) {
	dev := &memDevice{}
	h := NewHandleTable(dev, 3)

	var ids []Handle
	for i := 0; i < 3; i++ {
		id, err := h.Allocate(i)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	_, err := h.Allocate(0)
	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 3, dev.dups)

	// a freed slot is found again wherever the cursor is
	require.NoError(t, h.Release(ids[1]))
	id, err := h.Allocate(3)
	require.NoError(t, err)
	assert.Equal(t, ids[1], id)
	assert.Equal(t, 3, dev.openChannels())

	_, err = h.Allocate(0)
	assert.ErrorIs(t, err, ErrExhausted)
}

func TestHandleRotatingCursor(t *testing.T) {
	h := NewHandleTable(&memDevice{}, 4)
	a, err := h.Allocate(0)
	require.NoError(t, err)
	require.NoError(t, h.Release(a))
	b, err := h.Allocate(0)
	require.NoError(t, err)
	assert.Equal(t, a+1, b, "released slots are not reused before the cursor wraps")
}

func TestHandleBadIDs(t *testing.T) {
	h := NewHandleTable(&memDevice{}, 2)
	for _, id := range []Handle{0, 1, 2, 1 << 40} {
		_, err := h.Lookup(id)
		assert.ErrorIs(t, err, ErrBadHandle)
		assert.ErrorIs(t, h.Release(id), ErrBadHandle)
	}

	id, err := h.Allocate(0)
	require.NoError(t, err)
	require.NoError(t, h.Release(id))
	assert.ErrorIs(t, h.Release(id), ErrBadHandle)
	assert.Equal(t, 0, h.InUse())
}

func TestHandleDupFailure(t *testing.T) {
	dev := &memDevice{failDup: errors.New("EMFILE")}
	h := NewHandleTable(dev, 2)
	_, err := h.Allocate(0)
	assert.EqualError(t, err, "EMFILE")
	assert.Equal(t, 0, h.InUse())

	dev.failDup = nil
	_, err = h.Allocate(0)
	assert.NoError(t, err)
}

func TestHandleDefaultCapacity(t *testing.T) {
	assert.Equal(t, DefaultHandles, NewHandleTable(&memDevice{}, 0).Cap())
}

func TestHandleClose(t *testing.T) {
	dev := &memDevice{}
	h := NewHandleTable(dev, 4)
	for i := 0; i < 4; i++ {
		_, err := h.Allocate(i)
		require.NoError(t, err)
	}
	require.NoError(t, h.Close())
	assert.Equal(t, 0, h.InUse())
	assert.Equal(t, 0, dev.openChannels())
}

func TestHandleConcurrent(t *testing.T) {
	dev := &memDevice{}
	h := NewHandleTable(dev, 8)

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				id, err := h.Allocate(i % 4)
				if errors.Is(err, ErrExhausted) {
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				assert.NoError(t, h.Release(id))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.InUse())
	assert.Equal(t, 0, dev.openChannels())
}
