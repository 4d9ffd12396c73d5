package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Storage backends understood by the leaderboard server.
const (
	StorageSQLite = "sqlite"
	StorageMongo  = "mongo"
)

// ServerConfig configures the leaderboard HTTP service.
type ServerConfig struct {
	Addr       string // Listen address
	Storage    string // "sqlite" or "mongo"
	DBPath     string // SQLite file
	MongoURI   string
	MongoDB    string
	Release    bool // gin release mode
	CORSOrigin string
}

// DefaultServerConfig returns the configuration used when nothing is set.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:       ":3000",
		Storage:    StorageSQLite,
		DBPath:     "~/" + AppDirName + "/scores.db",
		MongoURI:   "mongodb://localhost:27017",
		MongoDB:    "hyperstack",
		CORSOrigin: "*",
	}
}

// LoadServer reads server settings from the environment. envFile is loaded
// first when it exists; variables already set in the environment win.
func LoadServer(envFile string) (ServerConfig, error) {
	cfg := DefaultServerConfig()

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	if v := os.Getenv("HYPERSTACK_ADDR"); v != "" {
		cfg.Addr = v
	} else if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("HYPERSTACK_STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("HYPERSTACK_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("MONGODB_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("MONGODB_DB"); v != "" {
		cfg.MongoDB = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		cfg.CORSOrigin = v
	}
	if v := os.Getenv("HYPERSTACK_RELEASE"); v != "" {
		release, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid HYPERSTACK_RELEASE %q: %w", v, err)
		}
		cfg.Release = release
	}

	switch cfg.Storage {
	case StorageSQLite, StorageMongo:
	default:
		return cfg, fmt.Errorf("unknown storage backend %q", cfg.Storage)
	}
	return cfg, nil
}
