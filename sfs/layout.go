package sfs

// layout describes the five contiguous on-disk regions (spec.md §4.3):
// superblock, inode table, root directory table, data area, free-block
// bitmap.
type layout struct {
	blockSize uint32

	numInodes     uint32 // includes inode 0 (root)
	numFileInodes uint32 // numInodes - 1

	superblockLBA uint32 // always 0

	inodeTableLBA    uint32
	inodeTableBlocks uint32

	dirTableLBA    uint32
	dirTableBlocks uint32

	dataLBA    uint32 // DATA_BLOCKS_OFFSET
	dataBlocks uint32 // M

	bitmapLBA    uint32
	bitmapBlocks uint32

	totalBlocks uint32
}

// indirectCapacity is the number of pointers that fit in one indirect
// block: BLOCK_SIZE / PTR_SIZE, not the source's off-by-one
// NUM_POINTERS_IN_INDIRECT (spec.md §9 Design Notes).
func indirectCapacity(blockSize uint32) uint32 {
	return blockSize / PtrSize
}

// maxDataBlocksPerFile is the direct + indirect block capacity of a single
// file.
func maxDataBlocksPerFile(blockSize uint32) uint32 {
	return NumDirect + indirectCapacity(blockSize)
}

func ceilDiv(a, b uint32) uint32 {
	if a == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// scaleDown downscales the data region so a from-scratch image doesn't
// have to reserve maxDataBlocksPerFile blocks per possible file
// (spec.md §4.3: M = NUM_FILE_INODES * (NUM_DIRECT + PTRS_PER_INDIRECT) /
// SCALE).
const scaleDown = 16

func computeLayout(numInodes, blockSize uint32) layout {
	l := layout{
		blockSize:     blockSize,
		numInodes:     numInodes,
		numFileInodes: numInodes - 1,
		superblockLBA: 0,
	}

	l.inodeTableLBA = 1
	l.inodeTableBlocks = ceilDiv(numInodes*inodeEncodedSize, blockSize)

	l.dirTableLBA = l.inodeTableLBA + l.inodeTableBlocks
	l.dirTableBlocks = ceilDiv(l.numFileInodes*dirEntryEncodedSize, blockSize)

	l.dataLBA = l.dirTableLBA + l.dirTableBlocks
	l.dataBlocks = (l.numFileInodes * maxDataBlocksPerFile(blockSize)) / scaleDown
	if l.dataBlocks == 0 {
		l.dataBlocks = maxDataBlocksPerFile(blockSize)
	}

	l.bitmapLBA = l.dataLBA + l.dataBlocks
	l.bitmapBlocks = ceilDiv(l.dataBlocks, blockSize) // one byte per slot

	l.totalBlocks = l.bitmapLBA + l.bitmapBlocks
	return l
}
