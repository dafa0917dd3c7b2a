package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is read when REDLIGHT_CONFIG is unset.
const DefaultPath = "config/redlight.toml"

type Config struct {
	SSH      SSHConfig      `toml:"ssh"`
	Web      WebConfig      `toml:"web"`
	Game     GameConfig     `toml:"game"`
	Database DatabaseConfig `toml:"database"`
	Logging  LoggingConfig  `toml:"logging"`
}

type SSHConfig struct {
	Host            string        `toml:"host"`
	Port            string        `toml:"port"`
	HostKeyPath     string        `toml:"host_key_path"`
	IdleTimeout     time.Duration `toml:"idle_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type WebConfig struct {
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	DisplayHost string `toml:"display_host"` // Host shown in the ssh command on the landing page
}

type GameConfig struct {
	DefaultDifficulty string `toml:"default_difficulty"`
	FrameRate         int    `toml:"frame_rate"`
	LeaderboardSize   int    `toml:"leaderboard_size"`
}

// DatabaseConfig selects the result store. An empty DSN keeps results in
// memory.
type DatabaseConfig struct {
	DSN             string        `toml:"dsn"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Load reads the TOML file at path over the defaults, then applies
// environment overrides. A missing file is not an error when path is the
// default path.
func Load(path string) (*Config, error) {
	cfg := defaults()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist) && path == DefaultPath:
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Path returns the config file location from REDLIGHT_CONFIG.
func Path() string {
	return GetEnv("REDLIGHT_CONFIG", DefaultPath)
}

func applyEnv(cfg *Config) {
	cfg.SSH.Host = GetEnv("SSH_HOST", cfg.SSH.Host)
	cfg.SSH.Port = GetEnv("SSH_PORT", cfg.SSH.Port)
	cfg.SSH.HostKeyPath = GetEnv("SSH_HOST_KEY", cfg.SSH.HostKeyPath)
	cfg.Web.Host = GetEnv("WEB_HOST", cfg.Web.Host)
	cfg.Web.Port = GetEnv("WEB_PORT", cfg.Web.Port)
	cfg.Web.DisplayHost = GetEnv("SSH_DISPLAY_HOST", cfg.Web.DisplayHost)
	cfg.Database.DSN = GetEnv("REDLIGHT_DSN", cfg.Database.DSN)
	cfg.Logging.Level = GetEnv("REDLIGHT_LOG_LEVEL", cfg.Logging.Level)
	cfg.Game.FrameRate = GetEnvInt("REDLIGHT_FPS", cfg.Game.FrameRate)
}

func (c *Config) validate() error {
	if c.Game.FrameRate <= 0 {
		return fmt.Errorf("game.frame_rate must be positive, got %d", c.Game.FrameRate)
	}
	if c.Game.LeaderboardSize <= 0 {
		return fmt.Errorf("game.leaderboard_size must be positive, got %d", c.Game.LeaderboardSize)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		SSH: SSHConfig{
			Host:            "::",
			Port:            "2222",
			HostKeyPath:     "/app/keys/host_key",
			IdleTimeout:     0,
			ShutdownTimeout: 15 * time.Second,
		},
		Web: WebConfig{
			Host:        "0.0.0.0",
			Port:        "8080",
			DisplayHost: "your-server.com",
		},
		Game: GameConfig{
			DefaultDifficulty: "normal",
			FrameRate:         60,
			LeaderboardSize:   10,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
