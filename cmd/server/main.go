package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/herdview/internal/config"
	"github.com/mamadbah2/herdview/internal/scheduler"
	"github.com/mamadbah2/herdview/internal/server/handlers"
	"github.com/mamadbah2/herdview/internal/server/router"
	"github.com/mamadbah2/herdview/internal/service/inventory"
	"github.com/mamadbah2/herdview/internal/service/render"
	"github.com/mamadbah2/herdview/internal/service/session"
	"github.com/mamadbah2/herdview/internal/service/views"
	"github.com/mamadbah2/herdview/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Log.Level))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	policy := inventory.NewPolicy(logger.Named(baseLogger, "svc.inventory"))
	controller := views.NewController(policy, logger.Named(baseLogger, "svc.views"))
	renderer := render.NewRenderer(logger.Named(baseLogger, "svc.render"))

	sessions := session.NewManager(session.Options{
		DBFileName: cfg.Viewer.DBFileName,
		TempDir:    cfg.Viewer.TempDir,
	}, controller, renderer, logger.Named(baseLogger, "svc.session"))
	defer sessions.CloseAll()

	viewerHandler := handlers.NewViewerHandler(sessions, cfg.Viewer.MaxArchiveBytes, logger.Named(baseLogger, "handlers.viewer"))
	engine := router.New(viewerHandler, logger.Named(baseLogger, "router"))

	sched := scheduler.NewScheduler(cfg.Viewer.SweepSchedule, cfg.Viewer.SessionTTL, sessions, logger.Named(baseLogger, "scheduler"))
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start session janitor", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      engine,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("viewer listening", zap.String("url", "http://"+cfg.Server.Addr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
