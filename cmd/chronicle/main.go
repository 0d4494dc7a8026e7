package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/chroniclehq/chronicle/internal/acl"
	"github.com/chroniclehq/chronicle/internal/auth"
	"github.com/chroniclehq/chronicle/internal/config"
	"github.com/chroniclehq/chronicle/internal/handlers"
	"github.com/chroniclehq/chronicle/internal/logging"
	"github.com/chroniclehq/chronicle/internal/server"
	"github.com/chroniclehq/chronicle/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	addr := flag.String("addr", "", "override listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("chronicle"))
	logging.SetDefault(logger)

	slog.Info("Starting chronicle service",
		slog.Int("port", cfg.Server.Port),
		slog.String("default_domain", cfg.Store.DefaultDomainID),
		slog.Int64("default_limit", cfg.Store.DefaultLimit),
	)

	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	if *addr != "" {
		listenAddr = *addr
	}

	timelineStore := store.NewMemoryStore(
		store.WithDefaultDomainID(cfg.Store.DefaultDomainID),
		store.WithDefaultLimit(cfg.Store.DefaultLimit),
		store.WithLogger(logger.Logger),
	)
	scanACL := acl.NewChecker(timelineStore.ACLDomainLookup(), cfg.Store.DefaultDomainID)
	readACL := acl.NewChecker(timelineStore.GetDomain, cfg.Store.DefaultDomainID)
	identity := auth.NewIdentity(cfg.Auth.JWTSecret)
	handler := handlers.NewTimelineHandler(timelineStore, scanACL, readACL, logger)

	srv := &http.Server{
		Addr:         listenAddr,
		Handler:      server.NewRouter(handler, identity),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  cfg.Server.IdleTimeout(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("chronicle service listening", slog.String("addr", listenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Stop the store first so in-flight requests fail fast instead of
	// observing a half-drained server.
	timelineStore.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", slog.String("error", err.Error()))
	}
}
