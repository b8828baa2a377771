package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/disciplinebot/internal/foundation/errors"
)

// Environment variables read on top of the config file.
const (
	EnvTelegramToken = "TELEGRAM_TOKEN"
	EnvUserID        = "USER_ID"
	EnvDataDir       = "DISCIPLINEBOT_DATA_DIR"
)

// envFiles are tried in order; every file that exists is loaded.
var envFiles = []string{".env", ".env.local"}

// loadEnvFile loads environment variables from .env/.env.local files.
// Process variables with a non-blank value are never overwritten; set but
// blank ones count as unset. The first file that sets a key wins.
func loadEnvFile() error {
	loaded := 0
	for _, envPath := range envFiles {
		if _, err := os.Stat(envPath); err != nil {
			continue
		}
		values, err := godotenv.Read(envPath)
		if err != nil {
			return fmt.Errorf("parse %s: %w", envPath, err)
		}
		for key, value := range values {
			if strings.TrimSpace(os.Getenv(key)) != "" {
				continue
			}
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set %s from %s: %w", key, envPath, err)
			}
		}
		fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
		loaded++
	}
	if loaded == 0 {
		return fmt.Errorf("no .env file found")
	}
	return nil
}

// applyEnvOverrides fills transport identity from the environment when the
// config file leaves it empty.
func applyEnvOverrides(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		cfg.Telegram.Token = strings.TrimSpace(os.Getenv(EnvTelegramToken))
	}
	if cfg.Telegram.UserID == 0 {
		if raw := strings.TrimSpace(os.Getenv(EnvUserID)); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return errors.WrapError(err, errors.CategoryConfig, "USER_ID must be an integer").
					Fatal().
					WithContext("value", raw).
					Build()
			}
			cfg.Telegram.UserID = id
		}
	}
	if dir := strings.TrimSpace(os.Getenv(EnvDataDir)); dir != "" {
		cfg.Storage.DataDir = dir
	}
	return nil
}
