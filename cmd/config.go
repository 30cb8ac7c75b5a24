package cmd

import (
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the flag/config-file-bound surface for both sfs and utl
// front doors: disk image path and layout knobs for sfs, worker-pool
// knobs for utl. Mirrors gcsfuse's cmd/root.go MountConfig in shape: one
// struct, populated by viper.Unmarshal after flags are bound.
type Config struct {
	Image     string `mapstructure:"image"`
	NumInodes uint32 `mapstructure:"num-inodes"`
	BlockSize uint32 `mapstructure:"block-size"`
	LogLevel  string `mapstructure:"log-level"`
	Tasks     int    `mapstructure:"tasks"`
}

func defaultConfig() Config {
	return Config{
		Image:     "sfs.img",
		NumInodes: 200,
		BlockSize: 1024,
		LogLevel:  "info",
		Tasks:     4,
	}
}

func (c Config) logLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func bindConfigFlags(flags *pflag.FlagSet) {
	d := defaultConfig()
	flags.StringVar(&cfg.Image, "image", d.Image, "path to the SFS disk image")
	flags.Uint32Var(&cfg.NumInodes, "num-inodes", d.NumInodes, "inode table size, including the root directory inode")
	flags.Uint32Var(&cfg.BlockSize, "block-size", d.BlockSize, "block size in bytes")
	flags.StringVar(&cfg.LogLevel, "log-level", d.LogLevel, "slog level: debug, info, warn, error")
	flags.IntVar(&cfg.Tasks, "tasks", d.Tasks, "number of UTL tasks for the run subcommand")
}

func bindViper() {
	_ = viper.BindPFlag("image", rootCmd.PersistentFlags().Lookup("image"))
	_ = viper.BindPFlag("num-inodes", rootCmd.PersistentFlags().Lookup("num-inodes"))
	_ = viper.BindPFlag("block-size", rootCmd.PersistentFlags().Lookup("block-size"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("tasks", rootCmd.PersistentFlags().Lookup("tasks"))
}
