package partfs

import (
	"sync"

	"github.com/pkg/errors"
)

// DefaultHandles is the handle table capacity used when none is configured
const DefaultHandles = 64

// Handle identifies one open partition file
type Handle uint64

// OpenFile is an occupied handle slot
type OpenFile struct {
	Index   int
	Channel Channel
}

type slot struct {
	inUse bool
	OpenFile
}

// HandleTable is a fixed arena of open-file slots. Allocation fails
// immediately once every slot is taken.
type HandleTable struct {
	mu     sync.Mutex
	dev    Channeler
	slots  []slot
	count  int
	cursor int
}

// NewHandleTable creates a table of capacity slots duplicating channels from dev
func NewHandleTable(dev Channeler, capacity int) *HandleTable {
	if capacity <= 0 {
		capacity = DefaultHandles
	}
	return &HandleTable{
		dev:   dev,
		slots: make([]slot, capacity),
	}
}

// Allocate binds a free slot to partition index with a fresh channel
func (h *HandleTable) Allocate(index int) (Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.count == len(h.slots) {
		return 0, errors.Wrapf(ErrExhausted, "all %d handles in use", len(h.slots))
	}
	// count < len guarantees a free slot within one lap
	id := h.cursor
	for h.slots[id].inUse {
		id = (id + 1) % len(h.slots)
	}
	ch, err := h.dev.Dup()
	if err != nil {
		return 0, err
	}
	h.slots[id] = slot{inUse: true, OpenFile: OpenFile{Index: index, Channel: ch}}
	h.count++
	h.cursor = (id + 1) % len(h.slots)
	return Handle(id), nil
}

func (h *HandleTable) get(id Handle) (*slot, error) {
	if id >= Handle(len(h.slots)) {
		return nil, errors.Wrapf(ErrBadHandle, "handle %d out of range", id)
	}
	s := &h.slots[id]
	if !s.inUse {
		return nil, errors.Wrapf(ErrBadHandle, "handle %d is not open", id)
	}
	return s, nil
}

// Lookup returns the slot bound to id
func (h *HandleTable) Lookup(id Handle) (OpenFile, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.get(id)
	if err != nil {
		return OpenFile{}, err
	}
	return s.OpenFile, nil
}

// Release closes the channel of id and frees its slot. The slot is freed
// even when closing the channel fails.
func (h *HandleTable) Release(id Handle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, err := h.get(id)
	if err != nil {
		return err
	}
	ch := s.Channel
	*s = slot{}
	h.count--
	return ch.Close()
}

// InUse returns the number of occupied slots, which equals the number of
// open duplicate channels
func (h *HandleTable) InUse() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

// Cap returns the table capacity
func (h *HandleTable) Cap() int {
	return len(h.slots)
}

// Close releases every open handle and returns the first close error
func (h *HandleTable) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var first error
	for i := range h.slots {
		s := &h.slots[i]
		if !s.inUse {
			continue
		}
		if err := s.Channel.Close(); err != nil && first == nil {
			first = err
		}
		*s = slot{}
	}
	h.count = 0
	return first
}
