package sfs

// GetNextFileName walks the directory table starting from the shared
// cursor and returns the next in-use entry's name. It resets the cursor to
// 0 and returns ("", false) once it runs off the end (spec.md §4.5). The
// cursor is shared, non-reentrant state: concurrent traversals are
// undefined, exactly as the spec allows.
func (s *Sfs) GetNextFileName() (string, bool) {
	for s.cursor < len(s.dirents) {
		e := s.dirents[s.cursor]
		s.cursor++
		if e.Mode == 1 {
			return e.name(), true
		}
	}
	s.cursor = 0
	return "", false
}

// findByName returns the directory-entry index (not the inode index — see
// the i/i+1 relationship in spec.md §4.6) of the in-use entry named name,
// or -1 if none exists.
func (s *Sfs) findByName(name string) int {
	for i := range s.dirents {
		if s.dirents[i].Mode == 1 && s.dirents[i].name() == name {
			return i
		}
	}
	return -1
}

// findFreeInode returns the smallest inode index i >= 1 with InUse == 0,
// or -1 if none exists.
func (s *Sfs) findFreeInode() int {
	for i := 1; i < len(s.inodes); i++ {
		if s.inodes[i].InUse == 0 {
			return i
		}
	}
	return -1
}

// findFreeFD returns a free slot in the FD table, or -1 if none exists.
func (s *Sfs) findFreeFD() int {
	for i := 1; i < len(s.fds); i++ {
		if s.fds[i].inode == -1 {
			return i
		}
	}
	return -1
}

// isOpen reports whether some FD already references inode index idx.
func (s *Sfs) isOpen(idx int) bool {
	for i := 1; i < len(s.fds); i++ {
		if s.fds[i].inode == int32(idx) {
			return true
		}
	}
	return false
}
