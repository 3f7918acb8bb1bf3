package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// ProjectConfig describes one reported project: which board to join on,
// where the first reporting period starts, which states chart as CFD
// columns and which of them count as throughput.
type ProjectConfig struct {
	GID        string    `json:"gid"`
	Horizon    time.Time `json:"horizon"`
	CFDStates  []string  `json:"cfd_states"`
	DoneStates []string  `json:"done_states"`
}

// ReportConfig maps report labels to their project configuration. Labels
// double as output file prefixes.
type ReportConfig struct {
	Projects map[string]ProjectConfig `json:"projects"`
}

// LoadReportConfig reads and validates the JSON report configuration.
func LoadReportConfig(path string) (*ReportConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg ReportConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate rejects configurations the engine cannot aggregate with.
func (c *ReportConfig) Validate() error {
	if len(c.Projects) == 0 {
		return fmt.Errorf("no projects configured")
	}
	for label, pc := range c.Projects {
		if pc.GID == "" {
			return fmt.Errorf("project %q: gid is required", label)
		}
		if pc.Horizon.IsZero() {
			return fmt.Errorf("project %q: horizon is required", label)
		}
		if len(pc.CFDStates) == 0 {
			return fmt.Errorf("project %q: cfd_states must not be empty", label)
		}
	}
	return nil
}

// AppConfig holds the environment-driven application settings.
type AppConfig struct {
	Token        string
	DataPath     string
	LogDir       string
	SnapshotDB   string
	RequestDelay time.Duration
}

// Load loads the application configuration from .env files and environment
// variables.
func Load() (*AppConfig, error) {
	// 1. Try the binary's directory first, then fall back to the working
	// directory (useful for development/go run).
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	logDir := filepath.Join(dataPath, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		log.Warn().Err(err).Str("path", logDir).Msg("Failed to create log directory")
	}

	delayMillis, _ := strconv.Atoi(getEnv("ASANA_REQUEST_DELAY_MILLIS", "500"))

	cfg := &AppConfig{
		Token:        getEnv("ASANA_TOKEN", ""),
		DataPath:     dataPath,
		LogDir:       logDir,
		SnapshotDB:   filepath.Join(dataPath, "snapshots.db"),
		RequestDelay: time.Duration(delayMillis) * time.Millisecond,
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
