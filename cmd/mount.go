package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oslab/utlsfs/sfs"
)

var mountCmd = &cobra.Command{
	Use:   "mount",
	Short: "Mount an existing SFS image and list its files",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()}))
		s, err := sfs.Mount(cfg.Image, sfs.Config{
			NumInodes: cfg.NumInodes,
			BlockSize: cfg.BlockSize,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("mount %s: %w", cfg.Image, err)
		}
		defer s.Close()

		fmt.Printf("mounted %s: %d files\n", cfg.Image, s.NumFiles())
		for {
			name, ok := s.GetNextFileName()
			if !ok {
				break
			}
			fmt.Printf("  %s (%d bytes)\n", name, s.GetFileSize(name))
		}
		return nil
	},
}
