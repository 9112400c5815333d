package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/bookmarksync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the local bookmark database
//	-t int      annotation request timeout in seconds
//	-l string   log level (debug|info|warn|error)
//
// Only the flags handled here are parsed (via flagx.FilterArgs) so other
// components can define their own without collisions.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local bookmark database")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "annotation request timeout (in seconds)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
}
