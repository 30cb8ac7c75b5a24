// Package sfs is a single-mount simple file system on top of a
// block-addressable disk: a flat single-directory namespace with direct
// and singly-indirect inode blocks, a bitmap allocator, and a persistent
// superblock/inode/directory/bitmap layout (spec.md §2, §4.3).
//
// All state (superblock, inode table, directory table, bitmap, FD table,
// the getnextfilename cursor) is owned exclusively by one *Sfs value and is
// not safe for concurrent use, per spec.md §5 — the same single-owner
// assumption hanwen-go-fuse's fileSystemMount makes about one mounted tree.
package sfs

import (
	"log/slog"

	"github.com/oslab/utlsfs/internal/obs"
	"github.com/oslab/utlsfs/sfs/disk"
)

// fd 0 is reserved/invalid, matching spec.md §4.6's "fd ∈ (0, NUM_INODES)".
const reservedFD = 0

type fdEntry struct {
	inode int32 // -1 if this slot is free
	rwptr int64
}

// Sfs is one mounted file system: the in-memory mirror of its four
// persistent regions plus the FD table and directory cursor that are
// never persisted (spec.md §4.4).
type Sfs struct {
	disk   disk.Disk
	layout layout

	sb       Superblock
	inodes   []Inode
	dirents  []DirEntry
	bitmap   []byte // one byte per data block, 0 free / 1 used
	fds      []fdEntry
	numFiles int
	cursor   int // getnextfilename's shared, non-reentrant cursor

	log *slog.Logger
}

// Config bounds a file system's capacity at format/mount time.
type Config struct {
	// NumInodes includes inode 0 (the root directory); user files occupy
	// 1..NumInodes-1.
	NumInodes uint32
	BlockSize uint32
	Logger    *slog.Logger
}

// DefaultConfig matches the sizes the source's config macros used.
func DefaultConfig() Config {
	return Config{NumInodes: 200, BlockSize: 1024}
}

// Format initializes a fresh disk image at path and mounts it.
func Format(path string, cfg Config) (*Sfs, error) {
	l := computeLayout(cfg.NumInodes, cfg.BlockSize)
	d, err := disk.InitFresh(path, l.totalBlocks, cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	return formatOnto(d, l, cfg)
}

// FormatMemory is Format backed by an in-memory disk, for tests.
func FormatMemory(cfg Config) (*Sfs, error) {
	l := computeLayout(cfg.NumInodes, cfg.BlockSize)
	d := disk.NewMemory(l.totalBlocks, cfg.BlockSize)
	return formatOnto(d, l, cfg)
}

func formatOnto(d disk.Disk, l layout, cfg Config) (*Sfs, error) {
	s := &Sfs{
		disk:   d,
		layout: l,
		sb: Superblock{
			Magic:         Magic,
			BlockSize:     cfg.BlockSize,
			TotalBlocks:   l.totalBlocks,
			InodeTableLen: l.inodeTableBlocks,
			RootDirInode:  0,
		},
		inodes:  make([]Inode, l.numInodes),
		dirents: make([]DirEntry, l.numFileInodes),
		bitmap:  make([]byte, l.dataBlocks),
		fds:     make([]fdEntry, l.numInodes),
		log:     obs.Or(cfg.Logger),
	}
	for i := range s.fds {
		s.fds[i].inode = -1
	}
	// Inode 0 is reserved for the root directory (spec.md §3.2).
	s.inodes[0] = Inode{InUse: 1, Mode: 1}

	if err := s.flushSuperblock(); err != nil {
		return nil, err
	}
	if err := s.flushInodeTable(); err != nil {
		return nil, err
	}
	if err := s.flushDirTable(); err != nil {
		return nil, err
	}
	if err := s.flushBitmap(); err != nil {
		return nil, err
	}
	s.log.Debug("sfs formatted", "total_blocks", l.totalBlocks, "num_inodes", l.numInodes)
	return s, nil
}

// Mount opens an already-formatted disk image at path.
func Mount(path string, cfg Config) (*Sfs, error) {
	l := computeLayout(cfg.NumInodes, cfg.BlockSize)
	d, err := disk.InitExisting(path, cfg.BlockSize)
	if err != nil {
		return nil, err
	}
	return mountFrom(d, l, cfg)
}

// MountMemory mounts an in-memory disk previously produced by FormatMemory,
// for round-trip tests within one process.
func MountMemory(d disk.Disk, cfg Config) (*Sfs, error) {
	l := computeLayout(cfg.NumInodes, cfg.BlockSize)
	return mountFrom(d, l, cfg)
}

func mountFrom(d disk.Disk, l layout, cfg Config) (*Sfs, error) {
	s := &Sfs{
		disk:   d,
		layout: l,
		fds:    make([]fdEntry, l.numInodes),
		log:    obs.Or(cfg.Logger),
	}
	for i := range s.fds {
		s.fds[i].inode = -1
	}

	sbBuf := make([]byte, cfg.BlockSize)
	if err := d.ReadBlocks(l.superblockLBA, 1, sbBuf); err != nil {
		return nil, err
	}
	s.sb.unmarshal(sbBuf)
	if s.sb.Magic != Magic {
		return nil, errBadMagic
	}

	inodeBuf := make([]byte, int(l.inodeTableBlocks)*int(cfg.BlockSize))
	if err := d.ReadBlocks(l.inodeTableLBA, l.inodeTableBlocks, inodeBuf); err != nil {
		return nil, err
	}
	s.inodes = unpackInodes(inodeBuf, int(l.numInodes))

	dirBuf := make([]byte, int(l.dirTableBlocks)*int(cfg.BlockSize))
	if err := d.ReadBlocks(l.dirTableLBA, l.dirTableBlocks, dirBuf); err != nil {
		return nil, err
	}
	s.dirents = unpackDirEntries(dirBuf, int(l.numFileInodes))

	bitmapBuf := make([]byte, int(l.bitmapBlocks)*int(cfg.BlockSize))
	if err := d.ReadBlocks(l.bitmapLBA, l.bitmapBlocks, bitmapBuf); err != nil {
		return nil, err
	}
	s.bitmap = bitmapBuf[:l.dataBlocks]

	s.numFiles = 0
	for i := range s.inodes {
		if s.inodes[i].InUse == 1 && i != 0 {
			s.numFiles++
		}
	}
	s.log.Debug("sfs mounted", "num_files", s.numFiles)
	return s, nil
}

// Close releases the underlying disk.
func (s *Sfs) Close() error {
	return s.disk.Close()
}

// NumFiles returns the number of user files currently present.
func (s *Sfs) NumFiles() int { return s.numFiles }

func (s *Sfs) flushSuperblock() error {
	buf := make([]byte, s.layout.blockSize)
	copy(buf, s.sb.marshal())
	return s.disk.WriteBlocks(s.layout.superblockLBA, 1, buf)
}

func (s *Sfs) flushInodeTable() error {
	buf := packInodes(s.inodes, s.layout.inodeTableBlocks, s.layout.blockSize)
	return s.disk.WriteBlocks(s.layout.inodeTableLBA, s.layout.inodeTableBlocks, buf)
}

func (s *Sfs) flushDirTable() error {
	buf := packDirEntries(s.dirents, s.layout.dirTableBlocks, s.layout.blockSize)
	return s.disk.WriteBlocks(s.layout.dirTableLBA, s.layout.dirTableBlocks, buf)
}

func (s *Sfs) flushBitmap() error {
	buf := make([]byte, int(s.layout.bitmapBlocks)*int(s.layout.blockSize))
	copy(buf, s.bitmap)
	return s.disk.WriteBlocks(s.layout.bitmapLBA, s.layout.bitmapBlocks, buf)
}

// bitmapAlloc finds the first free data block, marks it used, and returns
// its absolute LBA.
func (s *Sfs) bitmapAlloc() (uint32, bool) {
	for i, used := range s.bitmap {
		if used == 0 {
			s.bitmap[i] = 1
			return s.layout.dataLBA + uint32(i), true
		}
	}
	return 0, false
}

// bitmapFree marks the data block at lba free.
func (s *Sfs) bitmapFree(lba uint32) {
	idx := lba - s.layout.dataLBA
	s.bitmap[idx] = 0
}

func (s *Sfs) zeroBlock(lba uint32) error {
	buf := make([]byte, s.layout.blockSize)
	return s.disk.WriteBlocks(lba, 1, buf)
}
