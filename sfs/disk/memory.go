package disk

// MemoryDisk backs a Disk with an in-process byte slice, grounded in
// hanwen-go-fuse/fs/mem.go's MemRegularFile.Data []byte standing in for
// persistent storage. It exists for fast tests that don't want a real
// file on disk.
type MemoryDisk struct {
	data      []byte
	blockSize uint32
	numBlocks uint32
}

// NewMemory allocates a zero-filled in-memory disk of numBlocks*blockSize
// bytes. It plays the role of both InitFresh and InitExisting, since there
// is nothing to reopen across process lifetimes.
func NewMemory(numBlocks, blockSize uint32) *MemoryDisk {
	return &MemoryDisk{
		data:      make([]byte, int64(numBlocks)*int64(blockSize)),
		blockSize: blockSize,
		numBlocks: numBlocks,
	}
}

func (d *MemoryDisk) BlockSize() uint32 { return d.blockSize }
func (d *MemoryDisk) NumBlocks() uint32 { return d.numBlocks }

func (d *MemoryDisk) ReadBlocks(lba, n uint32, buf []byte) error {
	if err := checkRange(lba, n, d.numBlocks); err != nil {
		return err
	}
	off := int64(lba) * int64(d.blockSize)
	sz := int64(n) * int64(d.blockSize)
	copy(buf[:sz], d.data[off:off+sz])
	return nil
}

func (d *MemoryDisk) WriteBlocks(lba, n uint32, buf []byte) error {
	if err := checkRange(lba, n, d.numBlocks); err != nil {
		return err
	}
	off := int64(lba) * int64(d.blockSize)
	sz := int64(n) * int64(d.blockSize)
	copy(d.data[off:off+sz], buf[:sz])
	return nil
}

func (d *MemoryDisk) Close() error { return nil }
