package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/brightclass/results-api/internal/models"
	"github.com/brightclass/results-api/internal/service"
)

// Mints a signed bearer token for local API testing.
func main() {
	var (
		secret   string
		userID   string
		schoolID string
		role     string
		name     string
		expiry   time.Duration
	)

	flag.StringVar(&secret, "secret", "dev_secret", "JWT signing secret, must match the server's JWT_SECRET")
	flag.StringVar(&userID, "user", "admin-1", "Subject user ID")
	flag.StringVar(&schoolID, "school", "school-1", "Tenant school ID")
	flag.StringVar(&role, "role", string(models.RoleAdmin), "Role: ADMIN, TEACHER or STUDENT")
	flag.StringVar(&name, "name", "Local Admin", "Full name embedded in the token")
	flag.DurationVar(&expiry, "expiry", 24*time.Hour, "Token lifetime")
	flag.Parse()

	tokens := service.NewTokenService(secret, expiry)
	token, expiresAt, err := tokens.IssueToken(userID, schoolID, models.UserRole(role), name)
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}
	fmt.Println(token)
	fmt.Printf("expires: %s\n", expiresAt.Format(time.RFC3339))
}
