package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legacy-awakened/server/internal/config"
	"legacy-awakened/server/internal/engine"
	"legacy-awakened/server/internal/interfaces"
	"legacy-awakened/server/internal/session"
	"legacy-awakened/server/internal/storage"
	"legacy-awakened/server/internal/web"
)

func main() {
	// Load configuration
	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Durable snapshot storage is optional; the in-memory session map
	// is the source of truth either way.
	var snapshots interfaces.SnapshotStore

	mysqlStore, err := storage.NewMySQLStore(cfg.Database.MySQL)
	if err != nil {
		log.Printf("Warning: Failed to connect to MySQL: %v", err)
	} else {
		defer mysqlStore.Close()
		snapshots = mysqlStore
		log.Println("MySQL connected successfully")
	}

	redisStore, err := storage.NewRedisStore(cfg.Database.Redis)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v", err)
	} else {
		defer redisStore.Close()
		snapshots = redisStore
		log.Println("Redis connected successfully")
	}

	if cfg.AI.OpenAI.APIKey == "" {
		log.Println("Warning: No OpenAI API key provided. Every turn will degrade to placeholder text.")
	}

	// Initialize the narrative engine
	oracle := engine.NewOracleClient(cfg.AI.OpenAI)
	narrativeEngine := engine.NewNarrativeEngine(oracle)

	sessions := session.NewStore()

	// Spectator stream
	hub := web.NewTurnHub()
	go hub.Run()

	r := web.NewRouter(cfg, narrativeEngine, sessions, snapshots, hub)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute, // a turn is several sequential oracle round-trips
	}

	// Start server in background
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
