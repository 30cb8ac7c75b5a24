package sfs

// Open implements spec.md §4.6. If name already exists it is opened in
// append mode (rwptr set to the current size — Design Notes call this out
// explicitly as the preserved, if surprising, behavior of the source).
// Otherwise a fresh inode and directory entry are allocated. It returns -1
// if the name is too long, the file is already open, or any resource
// (inode, FD slot) is exhausted.
func (s *Sfs) Open(name string) int {
	fd, err := s.open(name)
	if err != nil {
		s.log.Debug("open refused", "name", name, "err", err)
		return -1
	}
	return fd
}

func (s *Sfs) open(name string) (int, error) {
	if len(name) >= MaxFilename {
		return -1, errNameTooLong
	}

	if di := s.findByName(name); di >= 0 {
		inodeIdx := di + 1
		if s.isOpen(inodeIdx) {
			return -1, errAlreadyOpen
		}
		fdIdx := s.findFreeFD()
		if fdIdx < 0 {
			return -1, errExhausted
		}
		s.dirents[di].Mode = 1
		s.inodes[inodeIdx].Mode = 1
		s.fds[fdIdx] = fdEntry{inode: int32(inodeIdx), rwptr: int64(s.inodes[inodeIdx].Size)}
		return fdIdx, nil
	}

	inodeIdx := s.findFreeInode()
	if inodeIdx < 0 {
		return -1, errExhausted
	}
	fdIdx := s.findFreeFD()
	if fdIdx < 0 {
		return -1, errExhausted
	}

	s.inodes[inodeIdx] = Inode{InUse: 1, Mode: 1}
	di := inodeIdx - 1
	s.dirents[di] = DirEntry{Mode: 1}
	s.dirents[di].setName(name)
	s.numFiles++

	if err := s.flushInodeTable(); err != nil {
		return -1, err
	}
	if err := s.flushDirTable(); err != nil {
		return -1, err
	}

	s.fds[fdIdx] = fdEntry{inode: int32(inodeIdx), rwptr: 0}
	s.log.Debug("file created", "name", name, "inode", inodeIdx, "fd", fdIdx)
	return fdIdx, nil
}

// Close invalidates fd. The inode is not freed — only Remove does that
// (spec.md §4.6).
func (s *Sfs) Close(fd int) int {
	if !s.fdValid(fd) {
		return -1
	}
	s.fds[fd] = fdEntry{inode: -1}
	return 0
}

// fdValid reports whether fd is in range (0, NUM_INODES) and currently
// open.
func (s *Sfs) fdValid(fd int) bool {
	return fd > reservedFD && fd < len(s.fds) && s.fds[fd].inode != -1
}
