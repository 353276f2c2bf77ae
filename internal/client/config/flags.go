package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/crux/internal/flagx"
)

// parseFlags overlays Config with command-line flags:
//
//	-p string   identity provider: local or cognito
//	-d string   local vault database path
//	-l string   log level: debug, info, warn, error
//	-r string   AWS region
//
// Only these flags are picked out of os.Args so other flags (like -c) do
// not make parsing fail. It panics on malformed values.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-p", "-d", "-l", "-r"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.Provider, "p", cfg.Provider, "identity provider (local or cognito)")
	fs.StringVar(&cfg.VaultDBPath, "d", cfg.VaultDBPath, "local vault database path")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.AWSRegion, "r", cfg.AWSRegion, "AWS region")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
