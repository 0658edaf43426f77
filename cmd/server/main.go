package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"roster-crm/config"
	"roster-crm/internal/handlers"
	"roster-crm/internal/ingest"
	"roster-crm/internal/routes"
	"roster-crm/internal/service"
	"roster-crm/internal/store"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	schema, err := ingest.LoadSchema(cfg.SchemaPath)
	if err != nil {
		slog.Error("Failed to load workbook schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Workbook schema loaded", "version", schema.Version)

	opts := []service.Option{service.WithLogger(logger)}
	snapshots := store.NewSnapshotStore(config.ConnectRedis(ctx, cfg))
	if snapshots.Enabled() {
		opts = append(opts, service.WithSnapshots(snapshots))
	}
	repo := store.NewRepository(config.ConnectDB(cfg))
	if repo.Enabled() {
		if err := repo.Migrate(); err != nil {
			slog.Error("Failed to migrate roster tables", "error", err)
			os.Exit(1)
		}
		opts = append(opts, service.WithMirror(repo))
	}

	registry := service.NewRegistry(ingest.New(ingest.WithSchema(schema), ingest.WithLogger(logger)), opts...)
	if _, err := registry.Restore(ctx); err != nil {
		slog.Error("Failed to restore roster snapshot", "error", err)
	}

	h := handlers.NewRosterHandler(registry, cfg.MaxUpload)
	if repo.Enabled() {
		h.Runs = repo
	}
	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           routes.SetupRoutes(h),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
