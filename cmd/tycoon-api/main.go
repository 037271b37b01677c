package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ittycoon/internal/api"
	"ittycoon/internal/cheat"
	"ittycoon/internal/config"
	"ittycoon/internal/game"
	"ittycoon/internal/persist"
	"ittycoon/internal/sim"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := cfg.Sim.Logger()

	catalog := game.DefaultCatalog()
	if cfg.Sim.CatalogPath != "" {
		if catalog, err = game.LoadCatalog(cfg.Sim.CatalogPath); err != nil {
			logger.Error("load catalog failed", "path", cfg.Sim.CatalogPath, "err", err)
			os.Exit(1)
		}
	}

	store, err := persist.Open(ctx, cfg.Sim.Store, logger)
	if err != nil {
		logger.Error("open store failed", "driver", cfg.Sim.Store.Driver, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	container, err := sim.New(ctx, sim.Options{
		Store:   store,
		Codec:   persist.Codec{Policy: persist.PolicyFromString(cfg.Sim.Store.VersionPolicy)},
		Key:     cfg.Sim.Store.Key,
		Catalog: catalog,
		Rules:   cfg.Sim.Rules,
		Cheats:  cheat.NewRegistry(logger),
		Logger:  logger,
	})
	if err != nil {
		logger.Error("state init failed", "err", err)
		os.Exit(1)
	}
	go container.Run(ctx)

	server := api.New(cfg, logger, container)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("tycoon api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
