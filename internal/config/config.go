package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

// Server contains the HTTP surface configuration.
type Server struct {
	Port          string `toml:"port"`
	MaxUploadSize int64  `toml:"max_upload_size"`
	ScreenshotDir string `toml:"screenshot_dir"`
}

// Database contains the review-archive connection configuration.
type Database struct {
	Type           string `toml:"type"`
	Path           string `toml:"path"`
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	User           string `toml:"user"`
	Password       string `toml:"password"`
	Name           string `toml:"name"`
	MigrationsPath string `toml:"migrations_path"`
}

type Config struct {
	Server   Server   `toml:"server"`
	Database Database `toml:"database"`
}

func Default() *Config {
	return &Config{
		Server: Server{
			Port:          "8080",
			MaxUploadSize: 104857600,
			ScreenshotDir: "./screenshots",
		},
		Database: Database{
			Type:           "sqlite",
			Path:           "./gamelens.db",
			Host:           "localhost",
			Port:           5432,
			User:           "gamelens",
			Password:       "gamelens_dev",
			Name:           "gamelens",
			MigrationsPath: "./migrations",
		},
	}
}

// Load reads a TOML config file over the defaults. An empty path skips
// the file; env overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets environment variables override file values, keeping
// the env-first deployment style working with or without a file.
func (c *Config) applyEnv() {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.ScreenshotDir, "SCREENSHOT_DIR")
	if env := os.Getenv("MAX_UPLOAD_SIZE"); env != "" {
		if size, err := strconv.ParseInt(env, 10, 64); err == nil {
			c.Server.MaxUploadSize = size
		}
	}

	setString(&c.Database.Type, "DB_TYPE")
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.Host, "DB_HOST")
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_NAME")
	setString(&c.Database.MigrationsPath, "MIGRATIONS_PATH")
	if env := os.Getenv("DB_PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil {
			c.Database.Port = port
		}
	}
}

func setString(dst *string, key string) {
	if env := os.Getenv(key); env != "" {
		*dst = env
	}
}
