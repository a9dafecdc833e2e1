package partfs

import (
	"strconv"
	"strings"

	"github.com/bobvanderlinden/mbrfs/pkg/mbr"
)

// Kind of object a path refers to
type Kind int

const (
	// Invalid paths name nothing
	Invalid Kind = iota
	// Root is the directory holding the partition files
	Root
	// Partition is one of the files 1..4
	Partition
)

// Target is the result of resolving a path
type Target struct {
	Kind  Kind
	Index int
}

// Resolve maps a filesystem path to the root, a partition index, or nothing.
//
// After one optional leading slash, the remainder must be the canonical
// decimal number of a slot, 1 to 4. Leading zeros, signs and multi-digit
// numbers are rejected, so "/10" is invalid rather than partition 1, and
// every accepted name is exactly a name the directory listing emits.
func Resolve(path string) Target {
	if path == "/" {
		return Target{Kind: Root}
	}
	name := strings.TrimPrefix(path, "/")
	n, err := strconv.Atoi(name)
	if err != nil || n < 1 || n > mbr.EntryCount || strconv.Itoa(n) != name {
		return Target{Kind: Invalid}
	}
	return Target{Kind: Partition, Index: n - 1}
}

// Name returns the file name of the partition at index
func Name(index int) string {
	return strconv.Itoa(index + 1)
}
