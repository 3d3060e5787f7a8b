package config

import (
	"flag"
	"os"
	"time"

	"github.com/avdeev/todolist/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session signing secret
//	-t int      session token validity, minutes
//	-n string   session cookie name
//	-b int      bcrypt cost
//	-w int      concurrent hash worker limit
//	-o int      store timeout, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-n", "-b", "-w", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "session signing secret")
	fs.StringVar(&config.SessionCookieName, "n", config.SessionCookieName, "session cookie name")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost factor")
	fs.IntVar(&config.HashWorkers, "w", config.HashWorkers, "max concurrent password hashing operations")

	tokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")
	storeTimeout := fs.Int("o", int(config.StoreTimeout.Seconds()), "store_timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.StoreTimeout = time.Duration(*storeTimeout) * time.Second
}
