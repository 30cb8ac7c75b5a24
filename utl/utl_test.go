package utl

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestCreateFIFOOrdering(t *testing.T) {
	u := New()
	u.Init()

	var mu sync.Mutex
	var order []uint64

	var wg sync.WaitGroup
	wg.Add(3)
	for i := 0; i < 3; i++ {
		ok := u.Create(func(h *Handle) {
			defer wg.Done()
			mu.Lock()
			order = append(order, h.ID())
			mu.Unlock()
			h.Exit()
		})
		if !ok {
			t.Fatalf("Create() = false; want true")
		}
	}
	wg.Wait()

	if err := u.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	for i := 1; i < len(order); i++ {
		if order[i] <= order[i-1] {
			t.Fatalf("order = %v; want strictly increasing task ids (FIFO)", order)
		}
	}
	if len(order) != 3 {
		t.Fatalf("len(order) = %d; want 3", len(order))
	}
}

func TestIOShuntLetsComputeProgress(t *testing.T) {
	dir := t.TempDir()
	big := filepath.Join(dir, "big")
	if err := os.WriteFile(big, make([]byte, 1<<20), 0o644); err != nil {
		t.Fatal(err)
	}

	u := New()
	u.Init()

	var computeYields int
	var mu sync.Mutex
	computeDone := make(chan struct{})
	ioDone := make(chan struct{})

	u.Create(func(h *Handle) {
		defer close(ioDone)
		fd := h.Open(big, os.O_RDONLY, 0)
		if fd < 0 {
			t.Error("Open() < 0")
		}
		buf := make([]byte, 1<<20)
		n := h.Read(fd, buf)
		if n <= 0 {
			t.Error("Read() <= 0")
		}
		h.Close(fd)
		h.Exit()
	})

	u.Create(func(h *Handle) {
		defer close(computeDone)
		for i := 0; i < 50; i++ {
			mu.Lock()
			computeYields++
			mu.Unlock()
			h.Yield()
		}
		h.Exit()
	})

	select {
	case <-computeDone:
	case <-time.After(5 * time.Second):
		t.Fatal("compute task never finished; I/O task may have blocked it")
	}
	<-ioDone

	mu.Lock()
	got := computeYields
	mu.Unlock()
	if got != 50 {
		t.Fatalf("computeYields = %d; want 50", got)
	}

	if err := u.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
}

func TestCreateFailsAtMaxThreads(t *testing.T) {
	u := New()
	u.Init()

	release := make(chan struct{})
	var started sync.WaitGroup
	started.Add(MaxThreads)

	for i := 0; i < MaxThreads; i++ {
		if !u.Create(func(h *Handle) {
			started.Done()
			<-release
			h.Exit()
		}) {
			t.Fatalf("Create() #%d = false; want true", i)
		}
	}

	if u.Create(func(h *Handle) { h.Exit() }) {
		t.Fatal("Create() at MaxThreads+1 = true; want false")
	}

	// C-EXEC runs one task at a time, so the bodies can only all start
	// once release lets each of them exit in turn.
	close(release)
	started.Wait()
	if err := u.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if got := u.LiveTasks(); got != 0 {
		t.Fatalf("LiveTasks() after drain = %d; want 0", got)
	}
}

func TestImplicitExitOnReturn(t *testing.T) {
	u := New()
	u.Init()

	done := make(chan struct{})
	u.Create(func(h *Handle) {
		close(done) // returns without calling h.Exit()
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("task body never ran")
	}

	if err := u.Shutdown(time.Second); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if got := u.LiveTasks(); got != 0 {
		t.Fatalf("LiveTasks() = %d; want 0", got)
	}
}

func TestYieldRoundTrips(t *testing.T) {
	u := New()
	u.Init()

	var seen []int
	var mu sync.Mutex
	done := make(chan struct{})

	u.Create(func(h *Handle) {
		defer close(done)
		for i := 0; i < 3; i++ {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
			h.Yield()
		}
		h.Exit()
	})

	<-done
	mu.Lock()
	got := append([]int(nil), seen...)
	mu.Unlock()
	if len(got) != 3 || got[0] != 0 || got[1] != 1 || got[2] != 2 {
		t.Fatalf("seen = %v; want [0 1 2]", got)
	}

	u.Shutdown(time.Second)
}
