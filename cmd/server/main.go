package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"attentionos/internal/app"
	"attentionos/pkg/config"
	"attentionos/pkg/logger"
)

var (
	addr       = flag.String("addr", "", "http service address (overrides config)")
	configFile = flag.String("config", "config.yml", "path to config file")
	logLevel   = flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	showCaller = flag.Bool("show-caller", false, "show caller information in logs")
	sourceURL  = flag.String("source-url", "", "read sessions from this tracking backend instead of SQLite")
	dbPath     = flag.String("db", "", "path to the SQLite database (overrides config)")
)

func main() {
	flag.Parse()

	serverLogger := logger.ServerLogger

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		serverLogger.Fatal("Could not load config file %s: %v", *configFile, err)
	}

	level := cfg.Logging.Level
	if *logLevel != "" {
		level = *logLevel
	}
	logger.InitLoggers(logger.ParseLevel(level), *showCaller || cfg.Logging.ShowCaller)

	if *sourceURL != "" {
		cfg.Source.Kind = config.SourceHTTP
		cfg.Source.BaseURL = *sourceURL
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	// Override address if provided via command line
	serverAddr := cfg.GetAddr()
	if *addr != "" {
		serverAddr = *addr
	}

	serverLogger.Info("Starting AttentionOS analytics on %s", serverAddr)
	serverLogger.Info("Environment: %s, session source: %s", cfg.Server.Environment, cfg.Source.Kind)

	application, err := app.New(cfg)
	if err != nil {
		serverLogger.Fatal("Failed to initialize analytics: %v", err)
	}
	defer application.Close()

	srv := app.NewServer(application, serverAddr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start server in a goroutine
	go func() {
		serverLogger.Info("Server listening on %s", serverAddr)
		if err := srv.Start(ctx); err != nil && err != http.ErrServerClosed {
			serverLogger.Fatal("Server failed to start: %v", err)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	serverLogger.Info("Received shutdown signal: %v", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	serverLogger.Info("Shutting down server...")
	cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		serverLogger.Warn("Server forced to shutdown: %v", err)
	}

	serverLogger.Info("Server gracefully stopped")
}
