package sfs

// Seek repositions fd's rwptr. Seeking exactly to the file's size is
// permitted (it enables append writes); seeking past it, or past the
// per-file block cap, is an error (spec.md §4.7).
func (s *Sfs) Seek(fd int, loc int) int {
	if !s.fdValid(fd) {
		s.log.Debug("seek refused", "fd", fd, "err", errBadFD)
		return -1
	}
	in := &s.inodes[s.fds[fd].inode]
	fileCap := int(maxDataBlocksPerFile(s.layout.blockSize)) * int(s.layout.blockSize)
	if loc < 0 || loc > int(in.Size) || loc >= fileCap {
		s.log.Debug("seek refused", "fd", fd, "err", errInvalidSeek)
		return -1
	}
	s.fds[fd].rwptr = int64(loc)
	return 0
}

// loadIndirect reads inode's indirect block into a slice of pointers, or
// returns a slice of zeros if the inode has no indirect block yet.
func (s *Sfs) loadIndirect(in *Inode) ([]uint32, error) {
	n := int(indirectCapacity(s.layout.blockSize))
	if in.Indirect == 0 {
		return make([]uint32, n), nil
	}
	buf := make([]byte, s.layout.blockSize)
	if err := s.disk.ReadBlocks(in.Indirect, 1, buf); err != nil {
		return nil, err
	}
	return unpackPointerBlock(buf, n), nil
}

func (s *Sfs) storeIndirect(lba uint32, ptrs []uint32) error {
	buf := packPointerBlock(ptrs, s.layout.blockSize)
	return s.disk.WriteBlocks(lba, 1, buf)
}

// Write implements spec.md §4.7's write algorithm: one block at a time,
// allocating lazily (including the indirect block itself, on first use
// past NumDirect), never leaving gaps. It is refused (returns 0) for a
// non-positive length, a closed fd, a negative or past-size rwptr, or an
// rwptr already at the per-file cap.
func (s *Sfs) Write(fd int, buf []byte) int {
	length := len(buf)
	if length <= 0 {
		return 0
	}
	if !s.fdValid(fd) {
		s.log.Debug("write refused", "fd", fd, "err", errBadFD)
		return 0
	}
	inodeIdx := s.fds[fd].inode
	in := &s.inodes[inodeIdx]
	rwptr := s.fds[fd].rwptr
	fileCap := int64(maxDataBlocksPerFile(s.layout.blockSize)) * int64(s.layout.blockSize)
	if rwptr < 0 || rwptr > int64(in.Size) || rwptr >= fileCap {
		s.log.Debug("write refused", "fd", fd, "err", errWriteRefused)
		return 0
	}

	indirect, err := s.loadIndirect(in)
	if err != nil {
		s.log.Error("load indirect failed", "err", err)
		return 0
	}
	indirectTouched := false
	bitmapTouched := false

	written := 0
	for written < length {
		blockIndex := int(rwptr / int64(s.layout.blockSize))
		if blockIndex >= int(maxDataBlocksPerFile(s.layout.blockSize)) {
			break
		}
		inBlockOff := int(rwptr % int64(s.layout.blockSize))

		var ptr *uint32
		if blockIndex < NumDirect {
			ptr = &in.Direct[blockIndex]
		} else {
			if in.Indirect == 0 {
				lba, ok := s.bitmapAlloc()
				if !ok {
					break
				}
				in.Indirect = lba
				bitmapTouched = true
			}
			ptr = &indirect[blockIndex-NumDirect]
			indirectTouched = true
		}

		blockBuf := make([]byte, s.layout.blockSize)
		if *ptr != 0 {
			if err := s.disk.ReadBlocks(*ptr, 1, blockBuf); err != nil {
				s.log.Error("read block failed", "err", err)
				break
			}
		} else {
			lba, ok := s.bitmapAlloc()
			if !ok {
				break
			}
			*ptr = lba
			bitmapTouched = true
		}

		n := min(length-written, int(s.layout.blockSize)-inBlockOff)
		copy(blockBuf[inBlockOff:inBlockOff+n], buf[written:written+n])
		if err := s.disk.WriteBlocks(*ptr, 1, blockBuf); err != nil {
			s.log.Error("write block failed", "err", err)
			break
		}

		rwptr += int64(n)
		written += n
		if uint32(rwptr) > in.Size {
			in.Size = uint32(rwptr)
		}
	}

	if written > 0 || bitmapTouched {
		if err := s.flushInodeTable(); err != nil {
			s.log.Error("flush inode table failed", "err", err)
		}
		if indirectTouched {
			if err := s.storeIndirect(in.Indirect, indirect); err != nil {
				s.log.Error("flush indirect block failed", "err", err)
			}
		}
		if bitmapTouched {
			if err := s.flushBitmap(); err != nil {
				s.log.Error("flush bitmap failed", "err", err)
			}
		}
	}

	s.fds[fd].rwptr = rwptr
	return written
}

// Read implements spec.md §4.7's read algorithm: never allocates, clamps
// length to size-rwptr, and stops at the first unallocated pointer along
// the path (treated as end-of-data). It returns the number of bytes
// actually copied.
func (s *Sfs) Read(fd int, buf []byte) int {
	if !s.fdValid(fd) {
		s.log.Debug("read refused", "fd", fd, "err", errBadFD)
		return 0
	}
	inodeIdx := s.fds[fd].inode
	in := &s.inodes[inodeIdx]
	rwptr := s.fds[fd].rwptr
	if rwptr < 0 || rwptr > int64(in.Size) {
		return 0
	}

	avail := int64(in.Size) - rwptr
	length := len(buf)
	if int64(length) > avail {
		length = int(avail)
	}
	if length <= 0 {
		return 0
	}

	var indirect []uint32
	if in.Indirect != 0 {
		var err error
		indirect, err = s.loadIndirect(in)
		if err != nil {
			s.log.Error("load indirect failed", "err", err)
			return 0
		}
	}

	read := 0
	for read < length {
		blockIndex := int(rwptr / int64(s.layout.blockSize))
		inBlockOff := int(rwptr % int64(s.layout.blockSize))

		var ptr uint32
		if blockIndex < NumDirect {
			ptr = in.Direct[blockIndex]
		} else if in.Indirect != 0 && blockIndex-NumDirect < len(indirect) {
			ptr = indirect[blockIndex-NumDirect]
		} else {
			break
		}
		if ptr == 0 {
			break
		}

		blockBuf := make([]byte, s.layout.blockSize)
		if err := s.disk.ReadBlocks(ptr, 1, blockBuf); err != nil {
			s.log.Error("read block failed", "err", err)
			break
		}

		n := min(length-read, int(s.layout.blockSize)-inBlockOff)
		copy(buf[read:read+n], blockBuf[inBlockOff:inBlockOff+n])

		rwptr += int64(n)
		read += n
	}

	s.fds[fd].rwptr = rwptr
	return read
}

// GetFileSize returns the size in bytes of the named file, or -1 if it
// does not exist.
func (s *Sfs) GetFileSize(name string) int {
	di := s.findByName(name)
	if di < 0 {
		s.log.Debug("getfilesize refused", "name", name, "err", errNotFound)
		return -1
	}
	return int(s.inodes[di+1].Size)
}
