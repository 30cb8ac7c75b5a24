package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/oslab/utlsfs/utl"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a workload of UTL tasks, each writing then reading back a scratch file",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()}))
		u := utl.New(utl.WithLogger(logger))
		u.Init()

		dir, err := os.MkdirTemp("", "utlsfs-run-")
		if err != nil {
			return fmt.Errorf("scratch dir: %w", err)
		}
		defer os.RemoveAll(dir)

		done := make(chan int, cfg.Tasks)
		for i := 0; i < cfg.Tasks; i++ {
			i := i
			ok := u.Create(func(h *utl.Handle) {
				defer h.Exit()
				path := filepath.Join(dir, fmt.Sprintf("task-%d", i))
				fd := h.Open(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC, 0o644)
				if fd < 0 {
					done <- -1
					return
				}
				payload := []byte(fmt.Sprintf("task %d says hello\n", i))
				h.Write(fd, payload)
				h.Yield()
				h.Close(fd)

				fd = h.Open(path, os.O_RDONLY, 0)
				if fd < 0 {
					done <- -1
					return
				}
				buf := make([]byte, len(payload))
				n := h.Read(fd, buf)
				h.Close(fd)
				done <- n
			})
			if !ok {
				return fmt.Errorf("create task %d: at MaxThreads (%d)", i, utl.MaxThreads)
			}
		}

		for i := 0; i < cfg.Tasks; i++ {
			<-done
		}

		if err := u.Shutdown(utl.DefaultDrainTimeout); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		fmt.Printf("ran %d tasks to completion\n", cfg.Tasks)
		return nil
	},
}
