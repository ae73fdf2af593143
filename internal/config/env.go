package config

import (
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/hotbuild/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads KEY=VALUE pairs from .env/.env.local when present.
// Existing process environment variables are never overwritten.
func loadEnvFiles() {
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(envPath); err != nil {
			slog.Warn("Failed to load environment file", logfields.Path(envPath), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.Path(envPath))
	}
}
