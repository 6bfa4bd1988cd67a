package config

import (
	"flag"
	"os"
	"time"

	"github.com/austin-tw/ZenFlow-WebSecurity-P4/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string    HTTP bind address (e.g., ":3000")
//	-d string    PostgreSQL DSN
//	-s string    JWT HMAC secret key
//	-t int       bearer-token validity, minutes
//	-i int       session inactivity expiry, minutes
//	-k string    field-encryption key, hex
//	-ci string   Google OAuth client id
//	-cs string   Google OAuth client secret
//	-cr string   Google OAuth redirect URL
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in minutes.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-i", "-k", "-ci", "-cs", "-cr"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Minutes()), "token_validity_duration (in minutes)")
	sessionExpiry := fs.Int("i", int(config.SessionIdleExpiry.Minutes()), "session_idle_expiry (in minutes)")

	fs.StringVar(&config.EncryptionKeyHex, "k", config.EncryptionKeyHex, "field encryption key (hex)")
	fs.StringVar(&config.GoogleClientID, "ci", config.GoogleClientID, "Google OAuth client id")
	fs.StringVar(&config.GoogleClientSecret, "cs", config.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&config.GoogleRedirectURL, "cr", config.GoogleRedirectURL, "Google OAuth redirect URL")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Minute
	config.SessionIdleExpiry = time.Duration(*sessionExpiry) * time.Minute
}
