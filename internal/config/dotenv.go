package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// defaultEnvFile is read when no env file is named.
const defaultEnvFile = ".env"

// LoadDotEnv loads environment variables from a .env file.
// If path is empty, it loads from ".env" in the current directory.
// If the file does not exist, it silently returns nil (not an error).
// Variables already set in the environment are left untouched.
func LoadDotEnv(path string) error {
	if path == "" {
		path = defaultEnvFile
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(path)
}

// MustLoadDotEnv loads environment variables from a .env file.
// Unlike LoadDotEnv, it returns an error if the file does not exist.
func MustLoadDotEnv(path string) error {
	if path == "" {
		path = defaultEnvFile
	}
	return godotenv.Load(path)
}

// LoadConfig loads configuration from a .env file and environment variables.
// An empty envPath reads ./.env when present; a named envPath must exist.
// Variables already set in the environment take precedence over the file.
func LoadConfig(envPath string) (AppConfig, error) {
	load := MustLoadDotEnv
	if envPath == "" {
		load = LoadDotEnv
	}
	if err := load(envPath); err != nil {
		return AppConfig{}, fmt.Errorf("env file: %w", err)
	}

	envCfg, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}

	return envCfg.ToAppConfig(), nil
}
