package disk

import "os"

// FileDisk backs a Disk with a regular OS file, the natural analogue of
// hanwen-go-fuse/fs's loopbackNode delegating reads/writes to a real
// file descriptor via ReadAt/WriteAt.
type FileDisk struct {
	f         *os.File
	blockSize uint32
	numBlocks uint32
}

// InitFresh creates (truncating if necessary) a new disk image of
// numBlocks*blockSize bytes, zero-filled.
func InitFresh(path string, numBlocks, blockSize uint32) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	size := int64(numBlocks) * int64(blockSize)
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, err
	}
	return &FileDisk{f: f, blockSize: blockSize, numBlocks: numBlocks}, nil
}

// InitExisting opens an already-formatted disk image.
func InitExisting(path string, blockSize uint32) (*FileDisk, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0o644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	numBlocks := uint32(info.Size() / int64(blockSize))
	return &FileDisk{f: f, blockSize: blockSize, numBlocks: numBlocks}, nil
}

func (d *FileDisk) BlockSize() uint32 { return d.blockSize }
func (d *FileDisk) NumBlocks() uint32 { return d.numBlocks }

func (d *FileDisk) ReadBlocks(lba, n uint32, buf []byte) error {
	if err := checkRange(lba, n, d.numBlocks); err != nil {
		return err
	}
	off := int64(lba) * int64(d.blockSize)
	_, err := d.f.ReadAt(buf[:int64(n)*int64(d.blockSize)], off)
	return err
}

func (d *FileDisk) WriteBlocks(lba, n uint32, buf []byte) error {
	if err := checkRange(lba, n, d.numBlocks); err != nil {
		return err
	}
	off := int64(lba) * int64(d.blockSize)
	_, err := d.f.WriteAt(buf[:int64(n)*int64(d.blockSize)], off)
	return err
}

func (d *FileDisk) Close() error { return d.f.Close() }
