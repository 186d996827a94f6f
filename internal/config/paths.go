// ABOUTME: Config file discovery and .env loading
// ABOUTME: Resolves the config path from flag, env var, working directory and XDG locations

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "SUPPORT_RELAY_CONFIG"

// DefaultPath is where `init` writes a config when nothing else is specified.
// Priority: XDG_CONFIG_HOME/support-relay/config.yaml > ~/.config/support-relay/config.yaml
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "support-relay", "config.yaml")
}

// FindPath returns the config file to load and whether one exists.
// Priority: explicit path > SUPPORT_RELAY_CONFIG > ./config.yaml > ./config.toml > DefaultPath.
// An explicit path or env var that does not exist is an error.
func FindPath(explicit string) (string, bool, error) {
	for _, p := range []string{explicit, os.Getenv(EnvConfigPath)} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			return "", false, fmt.Errorf("config file %s: %w", p, err)
		}
		return p, true, nil
	}

	for _, p := range []string{"config.yaml", "config.toml", DefaultPath()} {
		if _, err := os.Stat(p); err == nil {
			return p, true, nil
		}
	}
	return "", false, nil
}

// LoadDotEnv loads variables from the given .env files (default ".env") into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}
