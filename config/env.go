package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

func LoadEnv() {
	_ = godotenv.Load()
	// Missing .env is fine; env vars can be set by other means.
	log.Println("Environment variables loaded (if .env present)")
}

// GetEnv returns the env var value or def when unset.
func GetEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
