// Package main is the entry point for the closing-odds resolution server.
// It wires the repositories, the resolvers, and the batch-job engine, and
// starts the HTTP API.
package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver

	"github.com/oddscope/clvserver/internal/api"
	"github.com/oddscope/clvserver/internal/config"
	"github.com/oddscope/clvserver/internal/engine"
	"github.com/oddscope/clvserver/internal/league"
	"github.com/oddscope/clvserver/internal/repository"
	"github.com/oddscope/clvserver/internal/scraper"
	"github.com/oddscope/clvserver/internal/service"
)

func main() {
	// ── 1. Config + logger ────────────────────────────────────────────────────
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting closing-odds server", "env", cfg.Server.Env, "port", cfg.Server.Port)

	// ── 2. Database ───────────────────────────────────────────────────────────
	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = repository.InitSchema(context.Background(), db); err != nil {
		logger.Error("schema init failed", "err", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	// ── 3. Repositories ───────────────────────────────────────────────────────
	jobRepo := repository.NewJobRepository(db)
	cacheRepo := repository.NewCacheRepository(db)
	mappingRepo := repository.NewMappingRepository(db)

	// ── 4. Resolvers + services ───────────────────────────────────────────────
	leagueResolver := league.NewResolver(mappingRepo, mappingRepo, logger)
	oddsSvc := service.NewOddsService(logger)
	jobSvc := service.NewJobService(jobRepo, logger)
	mappingSvc := service.NewMappingService(mappingRepo, cacheRepo, logger)

	harvester := scraper.NewHarvester(cfg, logger)

	// ── 5. Engine ─────────────────────────────────────────────────────────────
	eng := engine.NewEngine(jobRepo, cacheRepo, harvester, leagueResolver, oddsSvc, mappingRepo, cfg, logger)

	healthSvc := service.NewHealthService(jobRepo, cacheRepo, mappingRepo, eng, logger)

	// ── 6. Root context + signal handling ─────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eng.Start(ctx)

	// ── 7. HTTP router + server ───────────────────────────────────────────────
	router := api.SetupRouter(api.RouterDeps{
		JobSvc:     jobSvc,
		MappingSvc: mappingSvc,
		HealthSvc:  healthSvc,
		Cfg:        cfg,
	})

	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
			stop()
		}
	}()

	// ── 8. Graceful shutdown ──────────────────────────────────────────────────
	<-ctx.Done()
	logger.Info("shutdown signal received, draining…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown error", "err", err)
	}

	// Wait for the engine loops to wind down before closing the DB.
	if err = eng.Wait(); err != nil {
		logger.Error("engine shutdown error", "err", err)
	}

	db.Close()
	logger.Info("server stopped cleanly")
}
