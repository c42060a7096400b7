package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/trustverifier/backend/internal/api"
	"github.com/trustverifier/backend/internal/cache"
	"github.com/trustverifier/backend/internal/circuitbreaker"
	"github.com/trustverifier/backend/internal/config"
	"github.com/trustverifier/backend/internal/events"
	"github.com/trustverifier/backend/internal/metrics"
	"github.com/trustverifier/backend/internal/pilot"
	"github.com/trustverifier/backend/internal/trust"
	"github.com/trustverifier/backend/internal/upstream"
)

func main() {
	// Local development convenience; ignored when no .env exists.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	manager, err := config.NewManager(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := manager.Get()

	// Cache: Redis when configured and reachable, in-memory otherwise.
	var store cache.Store
	cacheInfo := "memory"
	if cfg.Cache.RedisAddr != "" {
		redisStore, err := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		if err != nil {
			log.Printf("⚠️ Redis unavailable, falling back to in-memory store: %v", err)
		} else {
			store = redisStore
			cacheInfo = "redis"
		}
	}
	if store == nil {
		store = cache.NewMemoryStore()
	}
	defer store.Close()

	m := metrics.NewMetrics()
	breakers := circuitbreaker.NewCollaboratorBreakers()
	httpClient := upstream.NewHTTPClient()

	sources := trust.Sources{
		Parent:     upstream.NewParentScoreClient(httpClient, cfg.Upstream.TrustScoreURL),
		Platforms:  upstream.NewPlatformClient(httpClient, cfg.Upstream.PlatformURL),
		Activity:   upstream.NewActivityClient(httpClient, cfg.Upstream.ActivityURL),
		Reputation: upstream.NewReputationClient(httpClient, cfg.Upstream.ReputationURL),
	}

	branchTimeout := time.Duration(cfg.Upstream.BranchTimeoutSeconds) * time.Second
	gatherer := trust.NewGatherer(branchTimeout, breakers, m)
	aggregator := trust.NewAggregator(cfg.Trust)
	verifier := trust.NewVerifier(
		aggregator,
		gatherer,
		sources,
		store,
		time.Duration(cfg.Trust.ReportTTLSeconds)*time.Second,
		m,
	)

	provenance := upstream.NewProvenanceClient(httpClient, cfg.Upstream.ProvenanceURL)
	identity := upstream.NewIdentityClient(httpClient, cfg.Upstream.IdentityURL)
	profiles := trust.NewProfileResolver(identity, store, time.Duration(cfg.Cache.ProfileTTLSeconds)*time.Second)

	pilotSvc := pilot.NewService(store, cfg.Upstream.ParentAgentEmail, m)
	hub := events.NewHub()

	server := api.NewServer(cfg, verifier, provenance, profiles, pilotSvc, hub, breakers, m, cacheInfo)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown (Cloud Run sends SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("🚀 TrustVerifier API starting on port %s (env=%s)", cfg.Server.Port, cfg.Server.Env)
	log.Printf("📊 Health check: http://localhost:%s/health", cfg.Server.Port)
	log.Printf("Parent: %s | Trust Score API: %s", cfg.Upstream.ParentAgentEmail, cfg.Upstream.TrustScoreURL)

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed to start: %v", err)
	}

	log.Println("Server stopped")
}
