// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for server, world and transport settings.
//
// Every section has a Default*() with the production values and a *FromEnv()
// that applies environment overrides on top.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               int
	AllowedOrigins     []string // empty uses the api package defaults
	DebugAddr          string
	DisableDebugServer bool
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:      4000,
		DebugAddr: "127.0.0.1:6060",
	}
}

// ServerFromEnv returns server configuration with environment variable overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if origins := getEnvList("ALLOWED_ORIGINS"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}
	if addr := os.Getenv("DEBUG_ADDR"); addr != "" {
		cfg.DebugAddr = addr
	}
	cfg.DisableDebugServer = getEnvBool("DISABLE_DEBUG_SERVER", cfg.DisableDebugServer)

	return cfg
}

// =============================================================================
// WORLD CONFIGURATION
// =============================================================================

// WorldConfig holds simulation settings.
type WorldConfig struct {
	TickInterval  time.Duration
	MaxPlayers    int
	Seed          int64 // 0 picks a time-based seed at startup
	ChatHistory   int   // newest messages carried in each snapshot
	ChatCapacity  int   // messages kept in memory
	ChatMaxLength int   // runes kept per message
}

// DefaultWorld returns the default world configuration.
func DefaultWorld() WorldConfig {
	return WorldConfig{
		TickInterval:  600 * time.Millisecond,
		MaxPlayers:    100,
		ChatHistory:   7,
		ChatCapacity:  100,
		ChatMaxLength: 200,
	}
}

// WorldFromEnv returns world configuration with environment variable overrides.
func WorldFromEnv() WorldConfig {
	cfg := DefaultWorld()

	if ms := getEnvInt("TICK_INTERVAL_MS", 0); ms > 0 {
		cfg.TickInterval = time.Duration(ms) * time.Millisecond
	}
	if mp := getEnvInt("MAX_PLAYERS", 0); mp > 0 {
		cfg.MaxPlayers = mp
	}
	if v := os.Getenv("WORLD_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Seed = seed
		}
	}
	if h := getEnvInt("CHAT_HISTORY", 0); h > 0 {
		cfg.ChatHistory = h
	}
	if c := getEnvInt("CHAT_CAPACITY", 0); c > 0 {
		cfg.ChatCapacity = c
	}
	if l := getEnvInt("CHAT_MAX_LENGTH", 0); l > 0 {
		cfg.ChatMaxLength = l
	}

	return cfg
}

// =============================================================================
// TRANSPORT LIMITS
// =============================================================================

// LimitsConfig controls DoS protection on the client transport.
type LimitsConfig struct {
	ActionsPerSecond   float64 // per-account inbound frame rate
	ActionBurst        int
	MaxConnections     int // total WebSocket connections
	MaxConnsPerIP      int
	MaxSessionsPerUser int
}

// DefaultLimits returns the default transport limits.
func DefaultLimits() LimitsConfig {
	return LimitsConfig{
		ActionsPerSecond:   10,
		ActionBurst:        20,
		MaxConnections:     500,
		MaxConnsPerIP:      10,
		MaxSessionsPerUser: 1,
	}
}

// LimitsFromEnv returns transport limits with environment variable overrides.
func LimitsFromEnv() LimitsConfig {
	cfg := DefaultLimits()

	if v := getEnvFloat("ACTIONS_PER_SECOND", 0); v > 0 {
		cfg.ActionsPerSecond = v
	}
	if b := getEnvInt("ACTION_BURST", 0); b > 0 {
		cfg.ActionBurst = b
	}
	if c := getEnvInt("MAX_WS_CONNECTIONS", 0); c > 0 {
		cfg.MaxConnections = c
	}
	if c := getEnvInt("MAX_WS_PER_IP", 0); c > 0 {
		cfg.MaxConnsPerIP = c
	}
	if c := getEnvInt("MAX_SESSIONS_PER_USER", 0); c > 0 {
		cfg.MaxSessionsPerUser = c
	}

	return cfg
}

// =============================================================================
// AUTH CONFIGURATION
// =============================================================================

// AuthConfig holds login-token settings.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

// DefaultAuth returns the default auth configuration. The secret is empty
// and must come from the environment.
func DefaultAuth() AuthConfig {
	return AuthConfig{
		Issuer:   "game-login",
		TokenTTL: 24 * time.Hour,
	}
}

// AuthFromEnv returns auth configuration with environment variable overrides.
func AuthFromEnv() AuthConfig {
	cfg := DefaultAuth()

	cfg.JWTSecret = os.Getenv("GAME_JWT_SECRET")
	if iss := os.Getenv("GAME_JWT_ISSUER"); iss != "" {
		cfg.Issuer = iss
	}
	if h := getEnvInt("GAME_TOKEN_TTL_HOURS", 0); h > 0 {
		cfg.TokenTTL = time.Duration(h) * time.Hour
	}

	return cfg
}

// =============================================================================
// EVENT LOG CONFIGURATION
// =============================================================================

// EventLogConfig controls the gameplay JSONL log.
type EventLogConfig struct {
	Path       string // empty disables file output
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultEventLog returns the default event log configuration.
func DefaultEventLog() EventLogConfig {
	return EventLogConfig{
		Path:       "events.jsonl",
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}
}

// EventLogFromEnv returns event log configuration with environment variable overrides.
func EventLogFromEnv() EventLogConfig {
	cfg := DefaultEventLog()

	if v, ok := os.LookupEnv("EVENT_LOG_PATH"); ok {
		cfg.Path = v
	}
	if mb := getEnvInt("EVENT_LOG_MAX_MB", 0); mb > 0 {
		cfg.MaxSizeMB = mb
	}
	if b := getEnvInt("EVENT_LOG_BACKUPS", -1); b >= 0 {
		cfg.MaxBackups = b
	}
	if d := getEnvInt("EVENT_LOG_MAX_AGE_DAYS", -1); d >= 0 {
		cfg.MaxAgeDays = d
	}
	cfg.Compress = getEnvBool("EVENT_LOG_COMPRESS", cfg.Compress)

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server   ServerConfig
	World    WorldConfig
	Limits   LimitsConfig
	Auth     AuthConfig
	EventLog EventLogConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:   ServerFromEnv(),
		World:    WorldFromEnv(),
		Limits:   LimitsFromEnv(),
		Auth:     AuthFromEnv(),
		EventLog: EventLogFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
