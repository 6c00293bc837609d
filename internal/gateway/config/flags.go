package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/hugmood/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":4000")
//	-r string   auth service gRPC address
//	-s string   JWT HMAC secret key
//	-f duration forward timeout (e.g., "10s")
//
// Only the flags above are picked out of os.Args; anything else is ignored.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-r", "-s", "-f"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run the gateway")
	fs.StringVar(&config.AuthGRPCAddr, "r", config.AuthGRPCAddr, "auth service gRPC address")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.ForwardTimeout, "f", config.ForwardTimeout, "timeout for forwarded requests")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
