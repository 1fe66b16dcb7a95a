package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dd0wney/cluso-consensus/pkg/auth"
)

func main() {
	secret := flag.String("secret", "", "Signing secret (or set CONSENSUS_AUTH_SECRET)")
	subject := flag.String("subject", "", "Token subject, who the token identifies")
	role := flag.String("role", auth.RoleViewer, "Token role: admin, operator, or viewer")
	ttl := flag.Duration("ttl", time.Hour, "Token lifetime")
	flag.Parse()

	if *secret == "" {
		*secret = os.Getenv("CONSENSUS_AUTH_SECRET")
	}
	if *secret == "" {
		fmt.Fprintln(os.Stderr, "consensus-token: a signing secret is required (-secret or CONSENSUS_AUTH_SECRET)")
		os.Exit(1)
	}
	if *subject == "" {
		fmt.Fprintln(os.Stderr, "consensus-token: -subject is required")
		os.Exit(1)
	}

	manager, err := auth.NewJWTManager(*secret, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "consensus-token: %v\n", err)
		os.Exit(1)
	}

	token, err := manager.GenerateToken(*subject, *role)
	if err != nil {
		fmt.Fprintf(os.Stderr, "consensus-token: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(token)
}
