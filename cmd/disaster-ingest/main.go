package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/cdrp-labs/disaster-ingest/internal/api"
	"github.com/cdrp-labs/disaster-ingest/internal/config"
	"github.com/cdrp-labs/disaster-ingest/internal/events"
	"github.com/cdrp-labs/disaster-ingest/internal/logging"
	"github.com/cdrp-labs/disaster-ingest/internal/observability"
	"github.com/cdrp-labs/disaster-ingest/internal/pipeline"
	"github.com/cdrp-labs/disaster-ingest/internal/scheduler"
	"github.com/cdrp-labs/disaster-ingest/internal/source"
	"github.com/cdrp-labs/disaster-ingest/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := store.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	metrics := observability.NewMetrics()

	usgs := source.NewUSGS(cfg.Sources.USGSBaseURL, cfg.Sources.UserAgent,
		cfg.Sources.FetchTimeout, cfg.Import.WindowHours, cfg.Import.MinMagnitude)
	nws := source.NewNWS(cfg.Sources.NWSBaseURL, cfg.Sources.UserAgent, cfg.Sources.FetchTimeout)

	broadcaster := events.NewBroadcaster()
	importer := pipeline.NewImporter(db, db, cfg.Import.DefaultRegionCode, usgs, nws, metrics, broadcaster)
	guard := pipeline.NewRunGuard()

	// Log every incident that survives a commit.
	_, committed := broadcaster.Subscribe()
	go func() {
		for inc := range committed {
			slog.Info("incident created", "id", inc.ID, "title", inc.Title, "severity", inc.Severity)
		}
	}()

	sched := scheduler.New(clockwork.NewRealClock(), cfg.Scheduler.PollInterval, guard, metrics)
	sched.Register(api.JobSeismic, cfg.Scheduler.SeismicInterval, func(ctx context.Context) {
		if _, err := importer.ImportSeismic(ctx, cfg.Import.MinMagnitude); err != nil {
			slog.Error("scheduled earthquake import failed", "error", err)
		}
	})
	sched.Register(api.JobWeather, cfg.Scheduler.WeatherInterval, func(ctx context.Context) {
		if _, err := importer.ImportWeather(ctx, ""); err != nil {
			slog.Error("scheduled weather import failed", "error", err)
		}
	})
	sched.Register(api.JobCombined, cfg.Scheduler.CombinedInterval, func(ctx context.Context) {
		// Comprehensive pass with a lower magnitude floor.
		if _, err := importer.ImportSeismic(ctx, cfg.Import.CombinedMinMagnitude); err != nil {
			slog.Error("combined earthquake import failed", "error", err)
		}
		if _, err := importer.ImportWeather(ctx, ""); err != nil {
			slog.Error("combined weather import failed", "error", err)
		}
	})
	sched.Start()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(importer, guard, db)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	sched.Stop()
	broadcaster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
