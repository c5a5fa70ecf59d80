// Package main is the entry point for the inventario dashboard server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"inventario/internal/domain/auth"
	"inventario/internal/domain/consolidado"
	"inventario/internal/domain/count"
	"inventario/internal/domain/proforma"
	"inventario/internal/domain/session"
	"inventario/internal/domain/verification"
	"inventario/internal/infrastructure/cache"
	v1 "inventario/internal/infrastructure/http/v1"
	"inventario/internal/infrastructure/poller"
	"inventario/internal/infrastructure/remote"
	"inventario/internal/infrastructure/storage/localstore"
	"inventario/pkg/logger"
	"inventario/pkg/numerator"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize logger
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)
	log.Info("starting inventario server")

	// --- Remote inventory server client ---
	client, err := remote.New(remote.Config{
		BaseURL: mustEnv("INVENTORY_API_URL"),
		Timeout: getEnvDuration("INVENTORY_API_TIMEOUT", remote.DefaultTimeout),
	})
	if err != nil {
		log.Fatalw("failed to create remote client", "error", err)
	}

	// --- Local snapshot store ---
	store, err := localstore.New(getEnv("DATA_DIR", "./data"))
	if err != nil {
		log.Fatalw("failed to open local store", "error", err)
	}

	// --- Domain services ---
	authService := auth.NewService(auth.Config{
		JWT:           auth.DefaultJWTConfig(getEnv("JWT_SECRET", "change-me-in-production")),
		SupervisorKey: getEnv("SUPERVISOR_KEY", ""),
	})

	sessionCtrl := session.NewController(client)
	board := count.NewBoard()
	notifier := poller.NewNotifier()

	drafts := count.NewService(store)
	coordinator := count.NewCoordinator(client, drafts)
	editor := count.NewEditor(client)

	products := cache.NewProductCache(client,
		getEnvDuration("PRODUCT_CACHE_TTL", cache.DefaultProductTTL))

	nums, err := numerator.New(filepath.Join(getEnv("DATA_DIR", "./data"), "sequences.json"))
	if err != nil {
		log.Fatalw("failed to open numerator", "error", err)
	}

	consolidadoService := consolidado.NewService(client)
	verificationService := verification.NewService(client, nums)
	proformaService := proforma.NewService(client, nums)

	// --- Synchronizer ---
	sync := poller.New(client, sessionCtrl, board, notifier,
		getEnvDuration("POLL_INTERVAL", poller.DefaultInterval))
	if err := sync.Start(ctx); err != nil {
		log.Fatalw("failed to start synchronizer", "error", err)
	}
	defer sync.Stop()

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:         log,
		AuthService:    authService,
		SessionCtrl:    sessionCtrl,
		Board:          board,
		Notifier:       notifier,
		Poller:         sync,
		Coordinator:    coordinator,
		Editor:         editor,
		Consolidado:    consolidadoService,
		Verification:   verificationService,
		Proforma:       proformaService,
		Products:       products,
		Health:         client,
		AllowedOrigins: splitEnv("CORS_ALLOWED_ORIGINS"),
		Version:        version,
	})

	// --- HTTP Server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
		// Write timeout covers proxied upstream calls, which can stall for
		// up to the remote client timeout.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
