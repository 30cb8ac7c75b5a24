package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/oslab/utlsfs/sfs"
)

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Create a fresh SFS image",
	RunE: func(_ *cobra.Command, _ []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.logLevel()}))
		s, err := sfs.Format(cfg.Image, sfs.Config{
			NumInodes: cfg.NumInodes,
			BlockSize: cfg.BlockSize,
			Logger:    logger,
		})
		if err != nil {
			return fmt.Errorf("format %s: %w", cfg.Image, err)
		}
		defer s.Close()
		fmt.Printf("formatted %s: %d inodes, %d-byte blocks\n", cfg.Image, cfg.NumInodes, cfg.BlockSize)
		return nil
	},
}
