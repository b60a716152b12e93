package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"forest/internal/config"
	apphttp "forest/internal/http"
	"forest/internal/log"
	"forest/internal/services"
	"forest/internal/storage"
	"forest/internal/uploads"
)

// sessionPruneInterval controls how often expired sessions are swept.
const sessionPruneInterval = time.Hour

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	logger := log.New(log.Config{
		Level:     log.ParseLevel(cfg.LogLevel),
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", log.FieldError, err.Error())
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer repo.Close()

	files, err := uploads.NewStore(cfg.UploadDir)
	if err != nil {
		logger.Error("failed to prepare upload directory", log.FieldError, err.Error())
		os.Exit(1)
	}

	authSvc := services.NewAuthService(repo, cfg.SessionTTL, logger)
	expSvc := services.NewExpenseService(repo, files, logger)
	budSvc := services.NewBudgetService(repo, logger)

	srv := apphttp.NewServer(apphttp.Options{
		Addr:           ":" + cfg.Port,
		MaxUploadBytes: cfg.MaxUploadBytes,
		SecureCookie:   cfg.SecureCookie,
	}, repo, authSvc, expSvc, budSvc, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server",
			"port", cfg.Port,
			"db_path", cfg.DBPath,
			"upload_dir", cfg.UploadDir,
			log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(sessionPruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := authSvc.PruneSessions(gctx); err != nil {
					logger.Warn("session prune failed", log.FieldError, err.Error())
				}
			case <-gctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err.Error())
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
