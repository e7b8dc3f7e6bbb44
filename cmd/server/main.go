package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/OverlayPicker/backend/internal/infrastructure/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "overlay-picker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags override environment
	flag.StringVar(&cfg.Server.Port, "port", cfg.Server.Port, "Server port")
	flag.StringVar(&cfg.Server.Host, "host", cfg.Server.Host, "Server host")
	flag.StringVar(&cfg.Store.Backend, "store", cfg.Store.Backend, "Selection store backend (memory, file, http)")
	flag.StringVar(&cfg.Store.Dir, "store-dir", cfg.Store.Dir, "Directory of the file store")
	flag.StringVar(&cfg.Store.URL, "store-url", cfg.Store.URL, "Base URL of the http store")
	flag.StringVar(&cfg.Overlay.PacksDir, "packs", cfg.Overlay.PacksDir, "Overlay packs directory")
	flag.StringVar(&cfg.Overlay.CatalogConfig, "catalog", cfg.Overlay.CatalogConfig, "Catalog naming config (TOML)")
	flag.StringVar(&cfg.Logging.Level, "log-level", cfg.Logging.Level, "Log level")
	flag.BoolVar(&cfg.Logging.Development, "dev", cfg.Logging.Development, "Development logging")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	defer srv.Close()

	return srv.Run(ctx)
}
