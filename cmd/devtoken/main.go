// Command devtoken mints HS256 tokens for the shared-secret trust root, for
// local testing against a server started without JWT_JWKS_URL.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"foreverhome/internal/auth"
	"foreverhome/internal/config"
)

func main() {
	email := flag.String("email", "", "email claim of the token")
	ttl := flag.Duration("ttl", auth.DefaultTokenTTL, "token lifetime")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is not set")
	}

	issuer := auth.NewHMACVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, 0)
	token, err := issuer.Issue(*email, *ttl)
	if err != nil {
		log.Fatalf("issue token: %v", err)
	}
	fmt.Println(token)
}
