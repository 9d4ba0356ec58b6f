package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/vaibhav938bit/neoquery/internal/db"
)

// EnvLoader loads connection settings from a .env file so credentials
// come from a single source.
type EnvLoader struct {
	loaded bool
	path   string
}

// NewEnvLoader creates an environment loader.
func NewEnvLoader() *EnvLoader {
	return &EnvLoader{}
}

// Load loads environment variables from the nearest .env file, searching
// the current directory and its parents. Missing files are not an
// error; settings may already be in the process environment.
func (e *EnvLoader) Load() error {
	if e.loaded {
		return nil
	}

	envPath, err := findEnvFile()
	if err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load %s: %w", envPath, err)
		}
		e.path = envPath
	}

	e.loaded = true
	return nil
}

// GetPath returns the path of the loaded .env file, if any.
func (e *EnvLoader) GetPath() string {
	return e.path
}

// Validate checks that the required connection variables are set.
func (e *EnvLoader) Validate() error {
	required := []string{
		"NEO4J_URI",
		"NEO4J_USERNAME",
		"NEO4J_PASSWORD",
	}

	missing := []string{}
	for _, key := range required {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

// DatabaseConfig assembles a connection config from the environment.
func (e *EnvLoader) DatabaseConfig() db.Config {
	fetchSize := 0
	if raw := os.Getenv("NEO4J_FETCH_SIZE"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			fetchSize = n
		}
	}

	return db.Config{
		URI:           os.Getenv("NEO4J_URI"),
		Username:      os.Getenv("NEO4J_USERNAME"),
		Password:      os.Getenv("NEO4J_PASSWORD"),
		Database:      os.Getenv("NEO4J_DATABASE"),
		TargetVersion: os.Getenv("NEO4J_TARGET_VERSION"),
		FetchSize:     fetchSize,
	}
}

// findEnvFile searches for a .env file in the current and parent
// directories, up to five levels.
func findEnvFile() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	searchPath := cwd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(searchPath, ".env")
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}

		parent := filepath.Dir(searchPath)
		if parent == searchPath {
			break
		}
		searchPath = parent
	}

	return "", fmt.Errorf(".env not found in %s or its parents", cwd)
}
