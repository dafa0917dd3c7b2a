package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(DefaultPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SSH.Port != "2222" || cfg.Game.FrameRate != 60 || cfg.Game.DefaultDifficulty != "normal" {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load of a missing explicit file succeeded")
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "redlight.toml")
	body := `
[ssh]
port = "2022"
shutdown_timeout = "5s"

[game]
default_difficulty = "hard"
leaderboard_size = 5

[database]
dsn = "postgres://file"

[logging]
format = "json"
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REDLIGHT_DSN", "postgres://env")
	t.Setenv("SSH_HOST", "127.0.0.1")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SSH.Port != "2022" || cfg.SSH.Host != "127.0.0.1" {
		t.Fatalf("ssh = %+v", cfg.SSH)
	}
	if cfg.SSH.ShutdownTimeout != 5*time.Second {
		t.Fatalf("shutdown timeout = %v, want 5s", cfg.SSH.ShutdownTimeout)
	}
	if cfg.Game.DefaultDifficulty != "hard" || cfg.Game.LeaderboardSize != 5 || cfg.Game.FrameRate != 60 {
		t.Fatalf("game = %+v", cfg.Game)
	}
	if cfg.Database.DSN != "postgres://env" {
		t.Fatalf("dsn = %q, want env override", cfg.Database.DSN)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Fatalf("logging = %+v", cfg.Logging)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[game]\nframe_rate = 0\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted frame_rate = 0")
	}
}

func TestGetEnvInt(t *testing.T) {
	t.Setenv("REDLIGHT_TEST_INT", "42")
	t.Setenv("REDLIGHT_TEST_BAD", "x")
	if got := GetEnvInt("REDLIGHT_TEST_INT", 1); got != 42 {
		t.Fatalf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("REDLIGHT_TEST_BAD", 1); got != 1 {
		t.Fatalf("GetEnvInt bad = %d, want fallback", got)
	}
	if got := GetEnvInt("REDLIGHT_TEST_UNSET", 7); got != 7 {
		t.Fatalf("GetEnvInt unset = %d, want fallback", got)
	}
}
