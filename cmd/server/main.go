package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/roomhub/internal/config"
	"github.com/rickgao/roomhub/internal/engine"
	"github.com/rickgao/roomhub/internal/token"
	"github.com/rickgao/roomhub/internal/version"
	"github.com/rickgao/roomhub/internal/ws"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults used when empty)")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting roomhub",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadAndValidate(*configPath)
		if err != nil {
			logger.Error("failed to load config", "error", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	level, err := cfg.Log.SlogLevel()
	if err != nil {
		logger.Error("invalid log level", "error", err)
		os.Exit(1)
	}
	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Chat core
	chatEngine := engine.New(engine.Config{
		RoomTopicDepth:      cfg.Chat.RoomTopicDepth,
		DirectoryTopicDepth: cfg.Chat.DirectoryTopicDepth,
	}, logger)
	manager := engine.NewManager(chatEngine, logger)

	// Token service
	tokens := token.NewService(token.Config{
		Length:        cfg.Token.Length,
		TTL:           cfg.Token.TTL,
		SweepInterval: cfg.Token.SweepInterval,
		Charset:       cfg.Token.Charset,
		MaxAttempts:   cfg.Token.MaxAttempts,
	}, logger)

	// Routes
	mux := http.NewServeMux()
	mux.Handle("/ws", ws.NewHandler(manager, cfg.Chat.WriteTimeout, logger))
	tokens.Register(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		stats := chatEngine.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "healthy",
			"clients": stats.Clients,
			"rooms":   stats.Rooms,
			"tokens":  len(tokens.List()),
		})
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return tokens.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer shutdownCancel()
		// Engine forwarder goroutines are abandoned here on purpose; the
		// engine lives for the process lifetime.
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("roomhub stopped")
}
