// File path: internal/docstore/config.go
package docstore

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Path string `json:"path"`

	MaxOpenConns int `json:"max_open_conns"`
	MaxIdleConns int `json:"max_idle_conns"`

	BusyTimeout time.Duration `json:"-"`

	// ChunkSize/ChunkOverlap drive the text splitter that feeds the
	// search index.
	ChunkSize    int `json:"chunk_size"`
	ChunkOverlap int `json:"chunk_overlap"`
}

func DefaultConfig() Config {
	cfg := Config{Path: filepath.Join("data", "catalog.db")}
	cfg.applyDefaults()
	return cfg
}

// LoadConfig reads overrides from the environment and fills defaults.
func LoadConfig() (Config, error) {
	cfg := Config{}
	if path := strings.TrimSpace(os.Getenv("RPGBRIDGE_DB_PATH")); path != "" {
		cfg.Path = path
	}
	if openConns := strings.TrimSpace(os.Getenv("RPGBRIDGE_DB_MAX_OPEN_CONNS")); openConns != "" {
		value, err := strconv.Atoi(openConns)
		if err != nil {
			return Config{}, fmt.Errorf("parse RPGBRIDGE_DB_MAX_OPEN_CONNS: %w", err)
		}
		cfg.MaxOpenConns = value
	}
	if busy := strings.TrimSpace(os.Getenv("RPGBRIDGE_DB_BUSY_TIMEOUT")); busy != "" {
		parsed, err := time.ParseDuration(busy)
		if err != nil {
			return Config{}, fmt.Errorf("parse RPGBRIDGE_DB_BUSY_TIMEOUT: %w", err)
		}
		cfg.BusyTimeout = parsed
	}
	if size := strings.TrimSpace(os.Getenv("RPGBRIDGE_CHUNK_SIZE")); size != "" {
		value, err := strconv.Atoi(size)
		if err != nil {
			return Config{}, fmt.Errorf("parse RPGBRIDGE_CHUNK_SIZE: %w", err)
		}
		cfg.ChunkSize = value
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Path) == "" {
		c.Path = filepath.Join("data", "catalog.db")
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 8
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = c.MaxOpenConns
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = 5 * time.Second
	}
	if c.ChunkSize <= 0 {
		c.ChunkSize = 800
	}
	if c.ChunkOverlap <= 0 {
		c.ChunkOverlap = 80
	}
}
