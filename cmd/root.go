// Package cmd is the thin CLI front door over utl and sfs: flag/config-file
// parsing with cobra and viper, grounded in
// GoogleCloudPlatform-gcsfuse/cmd/root.go's rootCmd/cfgFile/viper.Unmarshal
// pattern. It is a caller of both packages, not a reimplementation of the
// shell spec.md §1 scopes out.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	cfg     = defaultConfig()
)

var rootCmd = &cobra.Command{
	Use:   "utlsfs",
	Short: "Format and mount SFS images, and run UTL-scheduled workloads",
	Long: `utlsfs is a front door over two independent cores: a single-mount
on-disk file system (SFS) and a cooperative user-level task scheduler
(UTL). Subcommands format or mount an SFS image, or run a workload of
UTL tasks against real files.`,
}

// Execute runs the root command; it is the only symbol cmd/utlsfs/main.go
// calls.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "path to a YAML config file")
	bindConfigFlags(rootCmd.PersistentFlags())
	bindViper()

	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(mountCmd)
	rootCmd.AddCommand(runCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		viper.SetConfigType("yaml")
		if err := viper.ReadInConfig(); err != nil {
			fmt.Fprintln(os.Stderr, "reading config file:", err)
			os.Exit(1)
		}
	}
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parsing config:", err)
		os.Exit(1)
	}
}
