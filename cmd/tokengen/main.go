// Command tokengen prints a signed bearer token for local testing.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/medreza/honcho-loyalty-service/pkg/middleware"
	log "github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()

	userID := flag.String("user", "", "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleUser, "role claim (user or admin)")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if *userID == "" {
		log.Fatal("-user is required")
	}
	if *role != middleware.RoleUser && *role != middleware.RoleAdmin {
		log.Fatalf("unknown role %q", *role)
	}

	token, err := middleware.IssueToken([]byte(secret), *userID, *role, *ttl)
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}
	fmt.Println(token)
}
