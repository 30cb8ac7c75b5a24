package sfs

import (
	"bytes"
	"encoding/binary"
)

// Magic identifies a formatted SFS image (spec.md §4.4).
const Magic uint32 = 0xACBD0005

const (
	// NumDirect is the number of direct block pointers an inode carries.
	NumDirect = 12
	// PtrSize is the on-disk width of a single block pointer.
	PtrSize = 4
	// MaxFilename is the maximum length of a directory entry name,
	// including its NUL terminator.
	MaxFilename = 60
)

// Superblock is the first on-disk block: magic, block size, total blocks,
// inode-table length in blocks, and the root directory's inode index.
// Fields are little-endian fixed-width, encoded in declaration order the
// same way other_examples' hellin-go-ext4 superblock parser binary.Reads a
// tagged-offset struct.
type Superblock struct {
	Magic         uint32
	BlockSize     uint32
	TotalBlocks   uint32
	InodeTableLen uint32
	RootDirInode  uint32
}

// sbEncodedSize is the encoded size of Superblock in bytes.
const sbEncodedSize = 5 * 4

func (sb *Superblock) marshal() []byte {
	buf := make([]byte, sbEncodedSize)
	binary.LittleEndian.PutUint32(buf[0:4], sb.Magic)
	binary.LittleEndian.PutUint32(buf[4:8], sb.BlockSize)
	binary.LittleEndian.PutUint32(buf[8:12], sb.TotalBlocks)
	binary.LittleEndian.PutUint32(buf[12:16], sb.InodeTableLen)
	binary.LittleEndian.PutUint32(buf[16:20], sb.RootDirInode)
	return buf
}

func (sb *Superblock) unmarshal(buf []byte) {
	sb.Magic = binary.LittleEndian.Uint32(buf[0:4])
	sb.BlockSize = binary.LittleEndian.Uint32(buf[4:8])
	sb.TotalBlocks = binary.LittleEndian.Uint32(buf[8:12])
	sb.InodeTableLen = binary.LittleEndian.Uint32(buf[12:16])
	sb.RootDirInode = binary.LittleEndian.Uint32(buf[16:20])
}

// Inode is the fixed-size on-disk metadata record for one file: whether
// the slot is in use, its mode bit, its size in bytes, NumDirect direct
// block LBAs, and one indirect-block LBA.
type Inode struct {
	InUse    uint32
	Mode     uint32
	Size     uint32
	Direct   [NumDirect]uint32
	Indirect uint32
}

// inodeEncodedSize is the encoded size of one Inode record in bytes:
// (1 + 1 + 1 + NumDirect + 1) * 4 = 64 bytes.
const inodeEncodedSize = (3 + NumDirect + 1) * 4

func (in *Inode) marshal(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:4], in.InUse)
	binary.LittleEndian.PutUint32(buf[4:8], in.Mode)
	binary.LittleEndian.PutUint32(buf[8:12], in.Size)
	off := 12
	for i := 0; i < NumDirect; i++ {
		binary.LittleEndian.PutUint32(buf[off:off+4], in.Direct[i])
		off += 4
	}
	binary.LittleEndian.PutUint32(buf[off:off+4], in.Indirect)
}

func (in *Inode) unmarshal(buf []byte) {
	in.InUse = binary.LittleEndian.Uint32(buf[0:4])
	in.Mode = binary.LittleEndian.Uint32(buf[4:8])
	in.Size = binary.LittleEndian.Uint32(buf[8:12])
	off := 12
	for i := 0; i < NumDirect; i++ {
		in.Direct[i] = binary.LittleEndian.Uint32(buf[off : off+4])
		off += 4
	}
	in.Indirect = binary.LittleEndian.Uint32(buf[off : off+4])
}

// DirEntry is a fixed-size directory entry: a NUL-terminated filename and
// a 0/1 mode (free/used).
type DirEntry struct {
	Name [MaxFilename]byte
	Mode uint32
}

// dirEntryEncodedSize is the encoded size of one DirEntry record in bytes.
const dirEntryEncodedSize = MaxFilename + 4

func (d *DirEntry) marshal(buf []byte) {
	copy(buf[0:MaxFilename], d.Name[:])
	binary.LittleEndian.PutUint32(buf[MaxFilename:MaxFilename+4], d.Mode)
}

func (d *DirEntry) unmarshal(buf []byte) {
	copy(d.Name[:], buf[0:MaxFilename])
	d.Mode = binary.LittleEndian.Uint32(buf[MaxFilename : MaxFilename+4])
}

// name returns the entry's filename with the NUL terminator and any
// trailing padding stripped.
func (d *DirEntry) name() string {
	if i := bytes.IndexByte(d.Name[:], 0); i >= 0 {
		return string(d.Name[:i])
	}
	return string(d.Name[:])
}

func (d *DirEntry) setName(name string) {
	d.Name = [MaxFilename]byte{}
	copy(d.Name[:], name)
}

// packInodes serializes inodes into blocks*blockSize bytes, zero-padded.
func packInodes(inodes []Inode, blocks, blockSize uint32) []byte {
	buf := make([]byte, int(blocks)*int(blockSize))
	for i := range inodes {
		off := i * inodeEncodedSize
		inodes[i].marshal(buf[off : off+inodeEncodedSize])
	}
	return buf
}

func unpackInodes(buf []byte, count int) []Inode {
	inodes := make([]Inode, count)
	for i := range inodes {
		off := i * inodeEncodedSize
		inodes[i].unmarshal(buf[off : off+inodeEncodedSize])
	}
	return inodes
}

// packDirEntries serializes directory entries into blocks*blockSize bytes.
func packDirEntries(entries []DirEntry, blocks, blockSize uint32) []byte {
	buf := make([]byte, int(blocks)*int(blockSize))
	for i := range entries {
		off := i * dirEntryEncodedSize
		entries[i].marshal(buf[off : off+dirEntryEncodedSize])
	}
	return buf
}

func unpackDirEntries(buf []byte, count int) []DirEntry {
	entries := make([]DirEntry, count)
	for i := range entries {
		off := i * dirEntryEncodedSize
		entries[i].unmarshal(buf[off : off+dirEntryEncodedSize])
	}
	return entries
}

// packPointerBlock serializes a slice of block pointers into one
// blockSize-byte indirect block.
func packPointerBlock(ptrs []uint32, blockSize uint32) []byte {
	buf := make([]byte, blockSize)
	for i, p := range ptrs {
		binary.LittleEndian.PutUint32(buf[i*PtrSize:i*PtrSize+PtrSize], p)
	}
	return buf
}

func unpackPointerBlock(buf []byte, count int) []uint32 {
	ptrs := make([]uint32, count)
	for i := range ptrs {
		ptrs[i] = binary.LittleEndian.Uint32(buf[i*PtrSize : i*PtrSize+PtrSize])
	}
	return ptrs
}
