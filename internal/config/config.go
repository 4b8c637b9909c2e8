package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/kartoza/crop-advisor/internal/artifacts"
)

// Artifact sources
const (
	SourceDir    = "dir"
	SourceSQLite = "sqlite"
)

// Config holds the application configuration
type Config struct {
	Port      int             `yaml:"port"`
	Version   string          `yaml:"-"`
	Server    ServerConfig    `yaml:"server"`
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Cache     CacheConfig     `yaml:"cache"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server timeouts
type ServerConfig struct {
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// ArtifactsConfig locates the model bundle
type ArtifactsConfig struct {
	Source string          `yaml:"source"` // dir or sqlite
	Dir    string          `yaml:"dir"`
	Bundle string          `yaml:"bundle"`
	Names  artifacts.Names `yaml:"names"`
}

// CacheConfig sizes the prediction cache
type CacheConfig struct {
	Size int `yaml:"size"`
}

// LoggingConfig configures zap and optional file rotation
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"` // json or console
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Port:    8080,
		Version: "dev",
		Server: ServerConfig{
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			IdleTimeout:     120 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Artifacts: ArtifactsConfig{
			Source: SourceDir,
			Dir:    "./models",
			Bundle: "./models/bundle.db",
			Names:  artifacts.DefaultNames(),
		},
		Cache: CacheConfig{Size: 256},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  50,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// Load reads a YAML file over the defaults and applies environment
// overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist):
			// defaults only
		default:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	cfg.fillNames()

	return cfg, cfg.Validate()
}

// applyEnv overrides settings from the environment
func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Port = port
	}
	if v := os.Getenv("CROP_ADVISOR_ARTIFACTS_DIR"); v != "" {
		c.Artifacts.Source = SourceDir
		c.Artifacts.Dir = v
	}
	if v := os.Getenv("CROP_ADVISOR_BUNDLE"); v != "" {
		c.Artifacts.Source = SourceSQLite
		c.Artifacts.Bundle = v
	}
	if v := os.Getenv("CROP_ADVISOR_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return nil
}

// fillNames restores default file names cleared by a partial YAML section
func (c *Config) fillNames() {
	def := artifacts.DefaultNames()
	n := &c.Artifacts.Names
	if n.Classifier == "" {
		n.Classifier = def.Classifier
	}
	if n.MinMax == "" {
		n.MinMax = def.MinMax
	}
	if n.Standard == "" {
		n.Standard = def.Standard
	}
	if n.Manifest == "" {
		n.Manifest = def.Manifest
	}
}

// Validate checks for settings that would prevent startup
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	switch c.Artifacts.Source {
	case SourceDir, SourceSQLite:
	default:
		return fmt.Errorf("unknown artifacts source %q", c.Artifacts.Source)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative")
	}
	return nil
}

// LoadArtifacts opens the configured bundle
func (c Config) LoadArtifacts() (*artifacts.Bundle, error) {
	if c.Artifacts.Source == SourceSQLite {
		return artifacts.LoadSQLite(c.Artifacts.Bundle)
	}
	return artifacts.LoadDir(c.Artifacts.Dir, c.Artifacts.Names)
}
