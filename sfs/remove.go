package sfs

// Remove implements spec.md §4.8: it frees every block (direct, then via
// the indirect block, then the indirect block itself), closes any FD still
// referencing the file, resets the inode and directory entry, and returns
// the freed inode index, or -1 if name does not exist.
func (s *Sfs) Remove(name string) int {
	di := s.findByName(name)
	if di < 0 {
		s.log.Debug("remove refused", "name", name, "err", errNotFound)
		return -1
	}
	inodeIdx := di + 1
	in := &s.inodes[inodeIdx]

	for i := range s.fds {
		if s.fds[i].inode == int32(inodeIdx) {
			s.fds[i] = fdEntry{inode: -1}
		}
	}

	for i := range in.Direct {
		if in.Direct[i] != 0 {
			s.zeroBlock(in.Direct[i])
			s.bitmapFree(in.Direct[i])
			in.Direct[i] = 0
		}
	}

	if in.Indirect != 0 {
		indirect, err := s.loadIndirect(in)
		if err == nil {
			for i, p := range indirect {
				if p != 0 {
					s.zeroBlock(p)
					s.bitmapFree(p)
					indirect[i] = 0
				}
			}
		}
		s.zeroBlock(in.Indirect)
		s.bitmapFree(in.Indirect)
		in.Indirect = 0
	}

	*in = Inode{}
	s.dirents[di] = DirEntry{}
	s.numFiles--

	if err := s.flushInodeTable(); err != nil {
		s.log.Error("flush inode table failed", "err", err)
	}
	if err := s.flushDirTable(); err != nil {
		s.log.Error("flush dir table failed", "err", err)
	}
	if err := s.flushBitmap(); err != nil {
		s.log.Error("flush bitmap failed", "err", err)
	}

	s.log.Debug("file removed", "name", name, "inode", inodeIdx)
	return inodeIdx
}
