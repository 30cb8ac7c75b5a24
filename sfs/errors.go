package sfs

import "errors"

// Internal sentinel errors, compared with errors.Is along call chains that
// stay inside the package (SPEC_FULL.md §6c). Apart from errBadMagic, which
// Mount and MountMemory return as-is, the public API never returns these
// directly: each public method translates them to the numeric
// convention spec.md §6/§7 specifies (fd, 0/-1, byte counts), the same way
// hanwen-go-fuse's Node* methods translate a Go error into a FUSE wire
// status without ever panicking across the boundary.
var (
	errNameTooLong  = errors.New("sfs: filename too long")
	errNotFound     = errors.New("sfs: no such file")
	errAlreadyOpen  = errors.New("sfs: file already open")
	errExhausted    = errors.New("sfs: no free inode or descriptor")
	errBadFD        = errors.New("sfs: invalid or closed file descriptor")
	errInvalidSeek  = errors.New("sfs: seek out of range")
	errWriteRefused = errors.New("sfs: write refused")
	errBadMagic     = errors.New("sfs: bad superblock magic")
)
