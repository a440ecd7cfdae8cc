package storage

import (
	"os"
	"path/filepath"
)

// Mode represents the storage backend mode
type Mode string

const (
	ModeSQLite Mode = "sqlite"
	ModeNone   Mode = "none"
)

// StoreConfig holds storage configuration
type StoreConfig struct {
	Mode Mode
	Path string // SQLite database file
}

// LoadStoreConfig loads storage config from environment
func LoadStoreConfig(dataDir string) StoreConfig {
	mode := Mode(getEnv("STORAGE_MODE", "sqlite"))
	if mode != ModeSQLite {
		mode = ModeNone
	}

	return StoreConfig{
		Mode: mode,
		Path: getEnv("SQLITE_PATH", filepath.Join(dataDir, "app.db")),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
