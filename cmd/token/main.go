// Command main mints development JWTs for exercising the API locally.
// The identity service owns token issuance in real deployments; this
// tool only exists so curl sessions against a dev server are possible.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"quill/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	userID := flag.Uint("user", 1, "Subject user ID")
	role := flag.String("role", "user", "Role claim: user or admin")
	ttl := flag.Duration("ttl", 24*time.Hour, "Token lifetime")
	flag.Parse()

	if *role != "user" && *role != "admin" {
		log.Fatalf("invalid role %q: must be user or admin", *role)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss":  "quill-api",
		"aud":  "quill-client",
		"sub":  fmt.Sprintf("%d", *userID),
		"role": *role,
		"jti":  uuid.New().String(),
		"iat":  now.Unix(),
		"exp":  now.Add(*ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatalf("Failed to sign token: %v", err)
	}

	fmt.Println(signed)
}
