package partfs

import (
	"io"
	"strings"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// BoundsPolicy decides what happens to transfers that leave the partition
type BoundsPolicy int

const (
	// Passthrough forwards every transfer unchecked, so reads and writes may
	// reach neighbouring partitions or the end of the device
	Passthrough BoundsPolicy = iota
	// Clamp truncates transfers at the end of the partition
	Clamp
	// Reject refuses any transfer not entirely inside the partition
	Reject
)

var policyNames = []string{"passthrough", "clamp", "reject"}

func (p BoundsPolicy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return "unknown"
	}
	return policyNames[p]
}

// ParseBoundsPolicy parses one of "passthrough", "clamp" or "reject"
func ParseBoundsPolicy(s string) (BoundsPolicy, error) {
	for i, name := range policyNames {
		if strings.EqualFold(s, name) {
			return BoundsPolicy(i), nil
		}
	}
	return Passthrough, errors.Errorf("unknown bounds policy %q, expected one of %s", s, strings.Join(policyNames, ", "))
}

// Router translates handle-relative transfers into device transfers
type Router struct {
	table   *mbr.Table
	handles *HandleTable
	policy  BoundsPolicy
}

// NewRouter creates a router over the given table and handles
func NewRouter(table *mbr.Table, handles *HandleTable, policy BoundsPolicy) *Router {
	return &Router{table: table, handles: handles, policy: policy}
}

// window applies the bounds policy and returns how many of n bytes at
// logical offset off may be transferred
func (r *Router) window(index int, off int64, n int, write bool) (int, error) {
	if r.policy == Passthrough {
		return n, nil
	}
	size := r.table.Size(index)
	if off < 0 {
		return 0, errors.Wrapf(ErrOutOfBounds, "negative offset %d", off)
	}
	remaining := size - off
	if remaining < 0 {
		remaining = 0
	}
	if int64(n) <= remaining {
		return n, nil
	}
	if r.policy == Reject || (write && remaining == 0) {
		return 0, errors.Wrapf(ErrOutOfBounds, "%d bytes at %d, partition %d is %d bytes", n, off, index+1, size)
	}
	return int(remaining), nil
}

// Read fills dest from logical offset off of the partition behind id and
// returns the byte count of the underlying transfer
func (r *Router) Read(id Handle, off int64, dest []byte) (int, error) {
	of, err := r.handles.Lookup(id)
	if err != nil {
		return 0, err
	}
	n, err := r.window(of.Index, off, len(dest), false)
	if err != nil || n == 0 {
		return 0, err
	}
	abs := r.table.Offset(of.Index) + off
	read, err := of.Channel.ReadAt(dest[:n], abs)
	log.WithFields(log.Fields{"handle": id, "partition": of.Index + 1, "offset": abs, "size": n, "read": read}).Trace("read")
	if read > 0 || err == io.EOF {
		return read, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "read partition %d at %d", of.Index+1, off)
	}
	return read, nil
}

// Write writes data at logical offset off of the partition behind id and
// returns the byte count of the underlying transfer
func (r *Router) Write(id Handle, off int64, data []byte) (int, error) {
	of, err := r.handles.Lookup(id)
	if err != nil {
		return 0, err
	}
	n, err := r.window(of.Index, off, len(data), true)
	if err != nil || n == 0 {
		return 0, err
	}
	abs := r.table.Offset(of.Index) + off
	written, err := of.Channel.WriteAt(data[:n], abs)
	log.WithFields(log.Fields{"handle": id, "partition": of.Index + 1, "offset": abs, "size": n, "written": written}).Trace("write")
	if written > 0 {
		return written, nil
	}
	if err != nil {
		return 0, errors.Wrapf(err, "write partition %d at %d", of.Index+1, off)
	}
	return written, nil
}

// Fsync flushes the channel behind id
func (r *Router) Fsync(id Handle) error {
	of, err := r.handles.Lookup(id)
	if err != nil {
		return err
	}
	return errors.Wrapf(of.Channel.Sync(), "sync partition %d", of.Index+1)
}
