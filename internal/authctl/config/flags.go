package config

import (
	"flag"
	"os"
	"slices"
	"strings"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
)

// Flags consumed by parseFlags. Each takes a value.
var ValueFlags = []string{"-a", "-s", "-t", "-c", "-config"}

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     gateway base URL
//	-s string     session file path
//	-t duration   request timeout (e.g., "5s")
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.GatewayURL, "a", cfg.GatewayURL, "gateway base URL")
	fs.StringVar(&cfg.SessionFile, "s", cfg.SessionFile, "session file")
	fs.DurationVar(&cfg.Timeout, "t", cfg.Timeout, "request timeout")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}

// Positional returns the arguments that are neither flags nor values of
// the flags in ValueFlags.
func Positional(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") || arg == "-" {
			out = append(out, arg)
			continue
		}
		name, _, inline := strings.Cut(strings.TrimPrefix(arg, "-"), "=")
		if !inline && slices.Contains(ValueFlags, "-"+name) && i+1 < len(args) {
			i++
		}
	}
	return out
}
