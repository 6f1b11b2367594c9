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

	"github.com/jpmellow/longevity-snap-02/internal/api"
	"github.com/jpmellow/longevity-snap-02/internal/cache"
	"github.com/jpmellow/longevity-snap-02/internal/config"
	"github.com/jpmellow/longevity-snap-02/internal/core"
	"github.com/jpmellow/longevity-snap-02/internal/store"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize database store
	dbStore, err := store.NewSQLiteStore(config.AppConfig.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	// Initialize the optional dashboard cache
	resultCache := cache.NewResultCache(config.AppConfig.RedisAddr, config.AppConfig.RedisPassword, config.AppConfig.RedisDB)
	if resultCache != nil {
		if err := resultCache.Ping(context.Background()); err != nil {
			log.Printf("Redis unreachable at %s, continuing without cache: %v", config.AppConfig.RedisAddr, err)
			resultCache = nil
		} else {
			defer resultCache.Close()
			log.Printf("Dashboard cache connected to redis at %s", config.AppConfig.RedisAddr)
		}
	}

	// Initialize the LLM provider when a key is configured; without one the
	// coach endpoints report 503 and everything else works normally.
	var llmService core.LLMService
	if config.AppConfig.CoachEnabled() {
		llmService = core.NewLLMService()
		if closer, ok := llmService.(interface{ Close() }); ok {
			defer closer.Close()
		}
		log.Printf("Health coach enabled (provider: %s)", config.AppConfig.LLMProvider)
	} else {
		log.Printf("No API key configured for provider %s; health coach disabled", config.AppConfig.LLMProvider)
	}

	// Initialize services
	assessmentService := core.NewAssessmentService(dbStore, resultCache)
	coachService := core.NewCoachService(dbStore, llmService)

	// Initialize API Handler and Router
	apiHandler := api.NewAPIHandler(dbStore, assessmentService, coachService)
	router := api.NewRouter(apiHandler)

	// Start HTTP server
	serverAddr := fmt.Sprintf(":%s", config.AppConfig.HTTPPort)

	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown handling
	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// dbStore.Close() and resultCache.Close() run via their defers.
	log.Println("Server exiting gracefully")
}
