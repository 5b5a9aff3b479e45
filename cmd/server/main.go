package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/willheto/game-server/internal/api"
	"github.com/willheto/game-server/internal/chat"
	"github.com/willheto/game-server/internal/config"
	"github.com/willheto/game-server/internal/game"
	"github.com/willheto/game-server/internal/statesync"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  GAME SERVER - TICK ENGINE")
	log.Println("🎮 ================================")

	// Load centralized configuration (SSOT - Single Source of Truth)
	appConfig := config.Load()
	serverCfg := appConfig.Server
	worldCfg := appConfig.World
	limitsCfg := appConfig.Limits

	seed := worldCfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	log.Printf("🎮 Config: %v ticks, %d max players, seed %d", worldCfg.TickInterval, worldCfg.MaxPlayers, seed)
	log.Printf("🛡️ Transport limits: %d connections, %d per IP, %.1f actions/s",
		limitsCfg.MaxConnections, limitsCfg.MaxConnsPerIP, limitsCfg.ActionsPerSecond)

	// Create world with centralized config
	gameCfg := game.DefaultWorldConfig()
	gameCfg.TickInterval = worldCfg.TickInterval
	gameCfg.MaxPlayers = worldCfg.MaxPlayers
	gameCfg.ChatHistory = worldCfg.ChatHistory
	gameCfg.ChatCapacity = worldCfg.ChatCapacity
	gameCfg.Seed = seed
	world := game.NewWorld(gameCfg)

	// Start event log
	elCfg := appConfig.EventLog
	if err := world.StartEventLog(game.EventLogOptions{
		Path:       elCfg.Path,
		MaxSizeMB:  elCfg.MaxSizeMB,
		MaxBackups: elCfg.MaxBackups,
		MaxAgeDays: elCfg.MaxAgeDays,
		Compress:   elCfg.Compress,
	}); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	} else if elCfg.Path != "" {
		log.Printf("📝 Event log: %s", elCfg.Path)
	} else {
		log.Println("📝 Event log: memory only")
	}

	// Start debug server
	if !serverCfg.DisableDebugServer {
		debugCfg := api.DefaultObservabilityConfig()
		debugCfg.ListenAddr = serverCfg.DebugAddr
		if err := api.StartDebugServer(debugCfg); err != nil {
			log.Printf("⚠️ Debug server disabled: %v", err)
		}
	}

	authCfg := appConfig.Auth
	authenticator := api.NewTokenAuthenticator(authCfg.JWTSecret, authCfg.Issuer, authCfg.TokenTTL)

	chatHandler := chat.NewHandler(world, worldCfg.ChatMaxLength, chat.DefaultRateLimitConfig)

	server := api.NewServer(world, api.ServerConfig{
		Auth: authenticator,
		Chat: chatHandler,
		Hub: api.HubConfig{
			MaxConnections:     limitsCfg.MaxConnections,
			MaxConnsPerIP:      limitsCfg.MaxConnsPerIP,
			MaxSessionsPerUser: limitsCfg.MaxSessionsPerUser,
			ActionsPerSecond:   limitsCfg.ActionsPerSecond,
			ActionBurst:        limitsCfg.ActionBurst,
			AllowedOrigins:     serverCfg.AllowedOrigins,
		},
	})

	// Snapshot -> diff -> encode -> broadcast
	pipeline := statesync.NewPipeline(server.Hub())
	pipeline.OnEncoded(func(s statesync.EncodeStats) {
		api.RecordEncoded(s.Bytes, s.TableEntries, s.Duration)
	})
	world.SetSnapshotHandler(pipeline)

	world.OnTick(func(s game.TickStats) {
		api.RecordTick(s.Tick, s.Duration, s.Players, s.Monsters)
		if el := world.EventLog(); el != nil {
			api.UpdateEventLogStats(el.GetTotalCount(), el.GetDroppedCount())
		}
	})

	// Start world
	world.Start()
	log.Printf("✅ World started (tick every %v)", world.TickInterval())

	// Start API server in goroutine
	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		if err := server.Start(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		log.Printf("⚠️ HTTP shutdown: %v", err)
	}
	world.Stop()
	world.StopEventLog()
	chatHandler.Stop()
	log.Println("👋 Goodbye!")
}
