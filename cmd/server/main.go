/*
Package main is the entry point for the Free Quilt pattern site server.

It is responsible for loading configuration, initializing the global logging system,
opening the preference store, setting up the HTTP server and the WebSocket hub,
and gracefully handling operating system interrupt signals (SIGINT, SIGTERM)
to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"freequilt/internal/app/catalog"
	"freequilt/internal/app/dashboard"
	"freequilt/internal/app/directory"
	"freequilt/internal/app/downloads"
	"freequilt/internal/app/hub"
	"freequilt/internal/app/prefstore"
	"freequilt/internal/app/storage"
	"freequilt/internal/app/view"
	"freequilt/internal/configs"
	"freequilt/internal/handler"
	"freequilt/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Str("store_backend", cfg.StoreBackend).
		Bool("s3_enabled", cfg.S3Enabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logx.Fatal(err, "Server stopped with error")
	}

	logx.Info("Server gracefully stopped.")
}

func run(ctx context.Context, cfg *configs.AppConfig) error {
	store, err := prefstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var files storage.StorageService
	if cfg.S3Enabled() {
		files, err = storage.NewStorageService(ctx, storage.ConfigFrom(cfg))
		if err != nil {
			logx.Error(err, "Pattern storage unavailable, downloads will carry no file link")
			files = nil
		}
	}

	index, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	opts := directory.DefaultOptions()
	opts.LoginLatency = cfg.LoginLatency
	opts.RegisterLatency = cfg.RegisterLatency
	dir := directory.New(store, opts)

	dl := downloads.NewService(store, index, dir, files)

	// Initialize the WebSocket hub
	manager := hub.NewManager(hub.Services{
		Store:         store,
		Directory:     dir,
		Catalog:       index,
		Pages:         view.DefaultPages(index.IDs(), dashboard.FavoriteCardIDs()),
		Downloads:     dl,
		Debounce:      cfg.SearchDebounce,
		DownloadDelay: downloads.StartDelay,
	})

	router := handler.Router(&handler.AppDeps{
		Config:    cfg,
		Store:     store,
		Directory: dir,
		Catalog:   index,
		Downloads: dl,
		Hub:       manager,
		Storage:   files,
	})

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logx.Info(fmt.Sprintf("Free Quilt Server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if watcher, ok := store.(prefstore.Watcher); ok {
		g.Go(func() error {
			err := watcher.Watch(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logx.Error(err, "Store watcher stopped, other instances' writes are no longer relayed")
			}
			return nil
		})
	}

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	g.Go(func() error {
		<-gctx.Done()
		logx.Info("Received shutdown signal. Starting graceful shutdown...")

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()

		manager.Shutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}
