package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/squeakroad/case-service/internal/app/background"
	"github.com/squeakroad/case-service/internal/app/setup"
	"github.com/squeakroad/case-service/internal/config"
	"github.com/squeakroad/case-service/internal/delivery/http/handlers"
	"github.com/squeakroad/case-service/internal/domain"
	"github.com/squeakroad/case-service/internal/infrastructure/logger"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	logg, logCloser, err := logger.New(cfg.LogConfig)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logCloser.Close()
	slog.SetDefault(logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := setup.InitializeDependencies(cfg, logg)
	if err != nil {
		logg.Error("failed to init dependencies", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error("failed to close dependencies", "error", err)
		}
	}()

	useCases := setup.InitializeUseCases(deps)

	tasks := background.NewBackgroundTasks(
		useCases.CaseUsecase,
		deps.Settlements,
		dedupOrNil(deps),
		cfg.Market.SweepInterval,
		logg,
	)
	tasks.StartAll(ctx)

	caseHandler := handlers.NewCaseHandler(logg, useCases.CaseUsecase)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr(),
		Handler:      handlers.NewRouter(caseHandler, cfg.Auth.JWTSecret, deps.Registry),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
	}

	go func() {
		logg.Info("http server started", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("http server shutdown failed", "error", err)
	}
	tasks.Wait()
}

// dedupOrNil keeps a nil *idempotency.Store from becoming a non-nil interface.
func dedupOrNil(deps *setup.Dependencies) domain.DedupStore {
	if deps.Dedup == nil {
		return nil
	}
	return deps.Dedup
}
