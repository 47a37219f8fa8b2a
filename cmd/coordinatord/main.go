package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/reliefgrid/reliefgrid/internal/api"
	"github.com/reliefgrid/reliefgrid/internal/chain"
	"github.com/reliefgrid/reliefgrid/internal/config"
	"github.com/reliefgrid/reliefgrid/internal/coordinator"
	"github.com/reliefgrid/reliefgrid/internal/ledger"
	"github.com/reliefgrid/reliefgrid/internal/logging"
	"github.com/reliefgrid/reliefgrid/internal/notify"
	"github.com/reliefgrid/reliefgrid/internal/payments"
	"github.com/reliefgrid/reliefgrid/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Broadcaster feeds the SSE notification stream
	broadcaster := notify.NewBroadcaster()
	fanout := notify.NewFanout(db, broadcaster)

	var intents coordinator.IntentCreator
	if cfg.Payments.Enabled {
		intents = payments.NewClient(cfg.Payments.BaseURL, cfg.Payments.APIKey)
	}

	coord := coordinator.New(db, ledger.New(db), fanout, intents)

	// Chain integration is optional and display-only
	var (
		chainClient *chain.Client
		poller      *chain.Poller
	)
	if cfg.Chain.Enabled {
		chainClient = chain.NewClient(cfg.Chain.BaseURL)
		poller = chain.NewPoller(cfg, chainClient, db)
		poller.Start(ctx)
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(20)) // 20 req/s global limit

	handler := api.NewHandler(db, coord, broadcaster, chainClient, cfg.Auth.JWTSecret, cfg.Auth.TokenDuration)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if poller != nil {
		poller.Stop()
	}
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
