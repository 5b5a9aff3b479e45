package config

import (
	"testing"
	"time"
)

// TestDefaults checks the production values
func TestDefaults(t *testing.T) {
	w := DefaultWorld()
	if w.TickInterval != 600*time.Millisecond {
		t.Errorf("Expected 600ms ticks, got %v", w.TickInterval)
	}
	if w.ChatHistory != 7 {
		t.Errorf("Expected chat history 7, got %d", w.ChatHistory)
	}
	if w.ChatMaxLength != 200 {
		t.Errorf("Expected chat max length 200, got %d", w.ChatMaxLength)
	}

	if s := DefaultServer(); s.DebugAddr != "127.0.0.1:6060" {
		t.Errorf("Debug server must default to localhost, got %s", s.DebugAddr)
	}
	if a := DefaultAuth(); a.JWTSecret != "" {
		t.Error("Default JWT secret must be empty")
	}
}

// TestWorldFromEnv applies overrides
func TestWorldFromEnv(t *testing.T) {
	t.Setenv("TICK_INTERVAL_MS", "250")
	t.Setenv("MAX_PLAYERS", "8")
	t.Setenv("WORLD_SEED", "12345")
	t.Setenv("CHAT_HISTORY", "3")
	t.Setenv("CHAT_MAX_LENGTH", "not-a-number")

	cfg := WorldFromEnv()
	if cfg.TickInterval != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", cfg.TickInterval)
	}
	if cfg.MaxPlayers != 8 {
		t.Errorf("Expected 8 players, got %d", cfg.MaxPlayers)
	}
	if cfg.Seed != 12345 {
		t.Errorf("Expected seed 12345, got %d", cfg.Seed)
	}
	if cfg.ChatHistory != 3 {
		t.Errorf("Expected chat history 3, got %d", cfg.ChatHistory)
	}
	if cfg.ChatMaxLength != 200 {
		t.Errorf("Invalid value should keep the default, got %d", cfg.ChatMaxLength)
	}
}

// TestServerFromEnv parses lists and booleans
func TestServerFromEnv(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test,,")
	t.Setenv("DISABLE_DEBUG_SERVER", "true")

	cfg := ServerFromEnv()
	if cfg.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("Unexpected origins %v", cfg.AllowedOrigins)
	}
	if !cfg.DisableDebugServer {
		t.Error("Expected debug server disabled")
	}
}

// TestEventLogFromEnv allows disabling file output
func TestEventLogFromEnv(t *testing.T) {
	t.Setenv("EVENT_LOG_PATH", "")
	t.Setenv("EVENT_LOG_BACKUPS", "0")

	cfg := EventLogFromEnv()
	if cfg.Path != "" {
		t.Errorf("Expected empty path, got %q", cfg.Path)
	}
	if cfg.MaxBackups != 0 {
		t.Errorf("Expected 0 backups, got %d", cfg.MaxBackups)
	}
}

// TestLoad assembles every section
func TestLoad(t *testing.T) {
	t.Setenv("GAME_JWT_SECRET", "s3cret")
	t.Setenv("ACTIONS_PER_SECOND", "2.5")

	cfg := Load()
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Expected secret from env, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Limits.ActionsPerSecond != 2.5 {
		t.Errorf("Expected 2.5 actions/s, got %v", cfg.Limits.ActionsPerSecond)
	}
	if cfg.World.TickInterval == 0 || cfg.Server.Port == 0 {
		t.Error("Load should fill defaults")
	}
}
