package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                     "test",
		Port:                    "8460",
		JWTSecret:               "secure-secret-at-least-32-chars-long",
		DBPassword:              "secure-password",
		DBSSLMode:               "disable",
		RedisURL:                "redis://localhost:6379",
		DefaultPageSize:         20,
		MaxPageSize:             100,
		BookmarkDuplicatePolicy: BookmarkPolicyIdempotent,
	}
}

func TestConfig_Validate_PageSizes(t *testing.T) {
	tests := []struct {
		name        string
		defaultSize int
		maxSize     int
		expectError bool
	}{
		{"defaults", 20, 100, false},
		{"equal sizes", 50, 50, false},
		{"zero default", 0, 100, true},
		{"negative default", -1, 100, true},
		{"max below default", 20, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.DefaultPageSize = tt.defaultSize
			c.MaxPageSize = tt.maxSize

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_BookmarkPolicy(t *testing.T) {
	tests := []struct {
		policy      string
		expectError bool
	}{
		{BookmarkPolicyIdempotent, false},
		{BookmarkPolicyConflict, false},
		{"", true},
		{"reject", true},
	}

	for _, tt := range tests {
		t.Run("policy="+tt.policy, func(t *testing.T) {
			c := validConfig()
			c.BookmarkDuplicatePolicy = tt.policy

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate_ProductionSecrets(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		jwtSecret   string
		dbPassword  string
		expectError bool
	}{
		{"production with default secret", "production", "your-secret-key-change-in-production", "strong-password", true},
		{"production with short secret", "production", "short", "strong-password", true},
		{"production with default db password", "production", "secure-secret-at-least-32-chars-long", "password", true},
		{"production with strong values", "production", "secure-secret-at-least-32-chars-long", "strong-password", false},
		{"development with weak values is tolerated", "development", "short", "password", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.JWTSecret = tt.jwtSecret
			c.DBPassword = tt.dbPassword

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
