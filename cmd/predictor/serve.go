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

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/chase-predictor/internal/api"
	"github.com/yourusername/chase-predictor/internal/config"
	"github.com/yourusername/chase-predictor/internal/database"
	"github.com/yourusername/chase-predictor/internal/health"
	"github.com/yourusername/chase-predictor/internal/logger"
	"github.com/yourusername/chase-predictor/internal/metrics"
	"github.com/yourusername/chase-predictor/internal/model"
	"github.com/yourusername/chase-predictor/internal/prediction"
	"github.com/yourusername/chase-predictor/internal/reference"
	"github.com/yourusername/chase-predictor/internal/repository"
	"github.com/yourusername/chase-predictor/internal/scheduler"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction API",
	Long:  `Loads the model once, then serves the HTTP API, health endpoints, gRPC health and the retention job until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLog, err := loadConfig()
	if err != nil {
		return err
	}
	if err := config.ApplySecretsFromEnv(ctx, cfg); err != nil {
		return err
	}

	appLog.WithFields(logrus.Fields{
		"version":     Version,
		"commit":      GitCommit,
		"environment": cfg.App.Environment,
		"model":       cfg.Model.Source,
	}).Info("Starting chase predictor")

	catalog, err := reference.Load(cfg.Reference.CatalogPath)
	if err != nil {
		return err
	}

	metrics.InitRegistry()

	// The model is loaded before any listener starts; a bad artifact is fatal.
	handle := model.NewHandle(modelLoader(cfg, appLog), appLog)
	plog := logger.NewPredictionLogger(appLog)
	scorer, err := handle.Get(ctx)
	if err != nil {
		plog.LogModelLoadFailure(cfg.Model.Source, err)
		return err
	}
	defer handle.Close()
	info := scorer.Info()
	plog.LogModelLoaded(info.Source, info.ModelVersion, info.SchemaVersion)

	healthCfg := health.Config{
		ServiceName: cfg.App.Name,
		Version:     Version,
		Commit:      GitCommit,
		Addr:        cfg.Server.HealthAddr,
		Logger:      appLog,
		Model:       handle,
		Breaker:     handle,
	}

	var predictionLog repository.PredictionLogRepository
	if cfg.Database.Enabled {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize prediction log: %w", err)
		}
		defer db.Close()

		repos, err := repository.NewRepositories(db)
		if err != nil {
			return err
		}
		predictionLog = repos.PredictionLog
		healthCfg.DB = db
	}

	svc := prediction.NewService(handle, predictionLog, appLog)
	handler := api.New(api.Config{
		Predictor:      svc,
		Catalog:        catalog,
		Logger:         appLog,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
	})
	httpSrv := api.NewHTTPServer(cfg.Server.Addr, handler.Routes(),
		time.Duration(cfg.Server.ReadTimeoutSeconds)*time.Second,
		time.Duration(cfg.Server.WriteTimeoutSeconds)*time.Second)

	healthSrv := health.NewServer(healthCfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return healthSrv.Run(gctx) })

	if cfg.Server.GRPCAddr != "" {
		grpcSrv := health.NewGRPCServer(cfg.Server.GRPCAddr, cfg.App.Name, appLog)
		healthSrv.OnReadyChange(grpcSrv.SetServing)
		g.Go(func() error { return grpcSrv.Run(gctx) })
	}

	g.Go(func() error {
		return serveHTTP(gctx, httpSrv, cfg.Server.ShutdownTimeout(), appLog)
	})

	if cfg.Retention.Enabled && predictionLog != nil {
		sched := scheduler.NewScheduler(predictionLog, appLog)
		if err := sched.ScheduleRetention(cfg.Retention.Schedule, cfg.Retention.MaxAge()); err != nil {
			return err
		}
		g.Go(func() error { return sched.Run(gctx) })
	}

	healthSrv.SetReady(true)

	if err := g.Wait(); err != nil {
		appLog.WithError(err).Error("Chase predictor stopped with error")
		return err
	}
	appLog.Info("Chase predictor stopped")
	return nil
}

func serveHTTP(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, log *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", srv.Addr).Info("HTTP API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("HTTP API shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
