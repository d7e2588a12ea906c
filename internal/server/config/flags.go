package config

import (
	"flag"
	"os"
	"time"

	"github.com/techasish/accountd/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   session token HMAC secret key
//	-t int      session token validity, hours
//	-m string   SMTP relay address (host:port; empty logs mail instead)
//	-u string   SMTP user
//	-p string   SMTP password
//	-f string   sender email address
//	-k          secure cookie mode (production)
//
// Notes:
//   - The function first filters os.Args to only the flags it recognizes using
//     flagx.FilterArgs, avoiding collisions with other components.
//   - The session validity flag is accepted as an integer in hours and then
//     converted to a time.Duration.
func parseFlags(config *Config) {
	// Filter args to include only the flags handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-m", "-u", "-p", "-f", "-k"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Hours()), "session_token_validity_duration (in hours)")

	fs.StringVar(&config.SMTPAddr, "m", config.SMTPAddr, "SMTP relay address")
	fs.StringVar(&config.SMTPUser, "u", config.SMTPUser, "SMTP user")
	fs.StringVar(&config.SMTPPassword, "p", config.SMTPPassword, "SMTP password")
	fs.StringVar(&config.SenderEmail, "f", config.SenderEmail, "sender email address")
	fs.BoolVar(&config.SecureCookies, "k", config.SecureCookies, "secure cookie mode")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionValidity) * time.Hour
}
