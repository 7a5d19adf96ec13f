package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvConfigDir overrides the directory searched for the default config file.
const EnvConfigDir = "STEGOBMP_CONFIG_DIR"

// DefaultFile is the config file name looked up in ConfigDir.
const DefaultFile = "config.yaml"

// ConfigDir returns the platform configuration directory for stegobmp
func ConfigDir() string {
	// Check environment variable first
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}

	// Use platform-specific defaults
	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", "stegobmp")
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "stegobmp")
		}
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "stegobmp")
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", "stegobmp")
		}
	}

	return ""
}

// DefaultPath returns the default config file if it exists, or "".
func DefaultPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	path := filepath.Join(dir, DefaultFile)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		return ""
	}
	return path
}
