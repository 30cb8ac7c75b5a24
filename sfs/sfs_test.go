package sfs

import (
	"bytes"
	"testing"

	"github.com/kylelemons/godebug/pretty"
)

func testConfig() Config {
	return Config{NumInodes: 32, BlockSize: 1024}
}

func mustFormat(t *testing.T) *Sfs {
	t.Helper()
	s, err := FormatMemory(testConfig())
	if err != nil {
		t.Fatalf("FormatMemory() = %v", err)
	}
	return s
}

func TestFormatEmptyInodeTable(t *testing.T) {
	s := mustFormat(t)
	for i := 1; i < len(s.inodes); i++ {
		if s.inodes[i].InUse != 0 {
			t.Fatalf("inode %d InUse = %d; want 0", i, s.inodes[i].InUse)
		}
	}
	if s.inodes[0].InUse != 1 {
		t.Fatal("root inode (0) InUse = 0; want 1")
	}
	if s.NumFiles() != 0 {
		t.Fatalf("NumFiles() = %d; want 0", s.NumFiles())
	}
}

// TestTinyWriteRead is spec.md §8 scenario 1.
func TestTinyWriteRead(t *testing.T) {
	s := mustFormat(t)

	fd := s.Open("a")
	if fd <= 0 {
		t.Fatalf("Open() = %d; want > 0", fd)
	}
	if n := s.Write(fd, []byte("hello")); n != 5 {
		t.Fatalf("Write() = %d; want 5", n)
	}
	if got := s.Close(fd); got != 0 {
		t.Fatalf("Close() = %d; want 0", got)
	}

	fd = s.Open("a")
	if fd <= 0 {
		t.Fatalf("re-Open() = %d; want > 0", fd)
	}
	if sz := s.GetFileSize("a"); sz != 5 {
		t.Fatalf("GetFileSize() = %d; want 5", sz)
	}
	if got := s.Seek(fd, 0); got != 0 {
		t.Fatalf("Seek(0) = %d; want 0", got)
	}
	buf := make([]byte, 5)
	if n := s.Read(fd, buf); n != 5 {
		t.Fatalf("Read() = %d; want 5", n)
	}
	if string(buf) != "hello" {
		t.Fatalf("Read buf = %q; want %q", buf, "hello")
	}
}

// TestCrossBlockWrite is spec.md §8 scenario 2.
func TestCrossBlockWrite(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	data := make([]byte, 1500)
	for i := range data {
		data[i] = byte(i % 251)
	}
	if n := s.Write(fd, data); n != 1500 {
		t.Fatalf("Write() = %d; want 1500", n)
	}
	if s.inodes[fdInode(s, fd)].Size != 1500 {
		t.Fatalf("inode size = %d; want 1500", s.inodes[fdInode(s, fd)].Size)
	}
	if s.inodes[fdInode(s, fd)].Direct[0] == 0 || s.inodes[fdInode(s, fd)].Direct[1] == 0 {
		t.Fatal("expected two allocated direct blocks")
	}

	s.Seek(fd, 0)
	out := make([]byte, 1500)
	if n := s.Read(fd, out); n != 1500 {
		t.Fatalf("Read() = %d; want 1500", n)
	}
	if !bytes.Equal(out, data) {
		if diff := pretty.Compare(out, data); diff != "" {
			t.Fatalf("readback mismatch: %s", diff)
		}
	}
}

// TestIndirectTrigger is spec.md §8 scenario 3.
func TestIndirectTrigger(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	n := int(NumDirect)*int(s.layout.blockSize) + 1
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i)
	}
	if got := s.Write(fd, data); got != n {
		t.Fatalf("Write() = %d; want %d", got, n)
	}
	inodeIdx := fdInode(s, fd)
	if s.inodes[inodeIdx].Indirect == 0 {
		t.Fatal("inode.Indirect == 0; want non-zero")
	}

	s.Seek(fd, 0)
	out := make([]byte, n)
	if got := s.Read(fd, out); got != n {
		t.Fatalf("Read() = %d; want %d", got, n)
	}
	if !bytes.Equal(out, data) {
		t.Fatal("readback mismatch across indirect boundary")
	}
}

// TestRemoveFreesBlocks is spec.md §8 scenario 4.
func TestRemoveFreesBlocks(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	n := int(NumDirect)*int(s.layout.blockSize) + 1
	s.Write(fd, make([]byte, n))
	s.Close(fd)

	before := s.NumFiles()
	inodeIdx := s.Remove("a")
	if inodeIdx <= 0 {
		t.Fatalf("Remove() = %d; want > 0", inodeIdx)
	}
	if s.NumFiles() != before-1 {
		t.Fatalf("NumFiles() = %d; want %d", s.NumFiles(), before-1)
	}
	if s.inodes[inodeIdx].InUse != 0 {
		t.Fatal("inode still InUse after Remove")
	}
	for _, b := range s.bitmap {
		if b != 0 {
			t.Fatal("bitmap not all free after Remove")
		}
	}
}

func TestReopenAfterRemoveIsFreshFile(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	s.Write(fd, []byte("0123456789"))
	s.Close(fd)
	s.Remove("a")

	fd = s.Open("a")
	if sz := s.GetFileSize("a"); sz != 0 {
		t.Fatalf("GetFileSize() after remove+reopen = %d; want 0", sz)
	}
	_ = fd
}

func TestWritePastCapIsTruncated(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	fileCap := int(maxDataBlocksPerFile(s.layout.blockSize)) * int(s.layout.blockSize)
	n := s.Write(fd, make([]byte, fileCap+1000))
	if n != fileCap {
		t.Fatalf("Write() past cap = %d; want %d", n, fileCap)
	}
}

func TestWriteWithGapRefused(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	s.Write(fd, []byte("hi"))
	s.fds[fd].rwptr = 100 // simulate rwptr > size without seek validation
	if n := s.Write(fd, []byte("x")); n != 0 {
		t.Fatalf("Write() with rwptr > size = %d; want 0", n)
	}
}

func TestSeekBoundaries(t *testing.T) {
	s := mustFormat(t)
	fd := s.Open("a")
	s.Write(fd, []byte("hello"))

	if got := s.Seek(fd, 5); got != 0 {
		t.Fatalf("Seek(size) = %d; want 0", got)
	}
	buf := make([]byte, 1)
	if n := s.Read(fd, buf); n != 0 {
		t.Fatalf("Read() at EOF = %d; want 0", n)
	}
	if got := s.Seek(fd, 6); got != -1 {
		t.Fatalf("Seek(size+1) = %d; want -1", got)
	}
}

func TestDirectoryTraversalRoundTrip(t *testing.T) {
	s := mustFormat(t)
	names := []string{"a", "b", "c"}
	for _, n := range names {
		fd := s.Open(n)
		s.Close(fd)
	}

	seen := map[string]bool{}
	for {
		name, ok := s.GetNextFileName()
		if !ok {
			break
		}
		seen[name] = true
	}
	for _, n := range names {
		if !seen[n] {
			t.Fatalf("GetNextFileName() never returned %q", n)
		}
	}
	if len(seen) != len(names) {
		t.Fatalf("saw %d names; want %d", len(seen), len(names))
	}

	// Cursor wraps and traversal is repeatable.
	name, ok := s.GetNextFileName()
	if !ok {
		name, ok = s.GetNextFileName()
	}
	if !ok || name == "" {
		t.Fatal("traversal did not restart after wraparound")
	}
}

func TestUniqueFilenamePerDirectory(t *testing.T) {
	s := mustFormat(t)
	fd1 := s.Open("dup")
	s.Close(fd1)

	fd2 := s.Open("dup")
	if s.NumFiles() != 1 {
		t.Fatalf("NumFiles() after reopening the same name = %d; want 1", s.NumFiles())
	}
	if fd2 <= 0 {
		t.Fatalf("Open(existing) = %d; want > 0", fd2)
	}
}

func TestOpenAlreadyOpenRefused(t *testing.T) {
	s := mustFormat(t)
	fd1 := s.Open("a")
	if fd1 <= 0 {
		t.Fatalf("Open() = %d; want > 0", fd1)
	}
	if fd2 := s.Open("a"); fd2 != -1 {
		t.Fatalf("Open() of already-open file = %d; want -1", fd2)
	}
}

func TestMountRoundTrip(t *testing.T) {
	s, err := FormatMemory(testConfig())
	if err != nil {
		t.Fatalf("format: %v", err)
	}
	d := s.disk

	for _, n := range []string{"x", "y", "z"} {
		fd := s.Open(n)
		s.Write(fd, []byte(n))
		s.Close(fd)
	}

	s2, err := MountMemory(d, testConfig())
	if err != nil {
		t.Fatalf("second mount: %v", err)
	}
	if s2.NumFiles() != 3 {
		t.Fatalf("NumFiles() after remount = %d; want 3", s2.NumFiles())
	}
	seen := map[string]bool{}
	for {
		name, ok := s2.GetNextFileName()
		if !ok {
			break
		}
		seen[name] = true
	}
	for _, n := range []string{"x", "y", "z"} {
		if !seen[n] {
			t.Fatalf("remount lost file %q", n)
		}
	}
}

func fdInode(s *Sfs, fd int) int32 {
	return s.fds[fd].inode
}
