package partfs

// Op is one operation of the filesystem protocol surface
type Op int

// Implemented operations come first, everything from OpReadlink on is
// rejected with ErrNotSupported.
const (
	OpGetattr Op = iota
	OpAccess
	OpReaddir
	OpLookup
	OpOpen
	OpRead
	OpWrite
	OpFsync
	OpRelease
	OpStatfs
	OpGetxattr
	OpListxattr
	OpSetxattr
	OpRemovexattr

	OpReadlink
	OpMknod
	OpMkdir
	OpUnlink
	OpRmdir
	OpSymlink
	OpRename
	OpLink
	OpSetattr
	OpCreate
	OpAllocate

	opCount
)

var opNames = [opCount]string{
	OpGetattr:     "getattr",
	OpAccess:      "access",
	OpReaddir:     "readdir",
	OpLookup:      "lookup",
	OpOpen:        "open",
	OpRead:        "read",
	OpWrite:       "write",
	OpFsync:       "fsync",
	OpRelease:     "release",
	OpStatfs:      "statfs",
	OpGetxattr:    "getxattr",
	OpListxattr:   "listxattr",
	OpSetxattr:    "setxattr",
	OpRemovexattr: "removexattr",
	OpReadlink:    "readlink",
	OpMknod:       "mknod",
	OpMkdir:       "mkdir",
	OpUnlink:      "unlink",
	OpRmdir:       "rmdir",
	OpSymlink:     "symlink",
	OpRename:      "rename",
	OpLink:        "link",
	OpSetattr:     "setattr",
	OpCreate:      "create",
	OpAllocate:    "allocate",
}

func (o Op) String() string {
	if o < 0 || o >= opCount {
		return "unknown"
	}
	return opNames[o]
}

// Supported reports whether the operation is implemented
func (o Op) Supported() bool {
	return o >= 0 && o < OpReadlink
}
