// Command devtoken prints a bearer token accepted by the server, for local
// testing without the account service.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/saransh1220/premium-profile/internal/modules/auth/infrastructure/jwt"
	"github.com/saransh1220/premium-profile/internal/shared/infrastructure/config"
)

func main() {
	_ = godotenv.Load()
	if err := run(os.Args[1:], config.Load().JWT, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "devtoken:", err)
		os.Exit(1)
	}
}

func run(args []string, cfg config.JWTConfig, out io.Writer) error {
	fs := flag.NewFlagSet("devtoken", flag.ContinueOnError)
	user := fs.String("user", "", "user id (random when empty)")
	role := fs.String("role", "user", "role claim")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID := uuid.New()
	if *user != "" {
		parsed, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("invalid -user: %w", err)
		}
		userID = parsed
	}

	token, err := jwt.NewProvider(cfg.Secret, cfg.Issuer, cfg.Expiry).GenerateToken(userID, *role)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "user_id=%s\n%s\n", userID, token)
	return err
}
