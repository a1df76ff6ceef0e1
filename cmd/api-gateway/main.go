package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/teacher-admin-api/api/swagger"
	"github.com/noah-isme/teacher-admin-api/internal/handler"
	internalmiddleware "github.com/noah-isme/teacher-admin-api/internal/middleware"
	"github.com/noah-isme/teacher-admin-api/internal/repository"
	"github.com/noah-isme/teacher-admin-api/internal/service"
	"github.com/noah-isme/teacher-admin-api/pkg/cache"
	"github.com/noah-isme/teacher-admin-api/pkg/config"
	"github.com/noah-isme/teacher-admin-api/pkg/database"
	"github.com/noah-isme/teacher-admin-api/pkg/jobs"
	"github.com/noah-isme/teacher-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/teacher-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/teacher-admin-api/pkg/middleware/requestid"
)

const shutdownTimeout = 10 * time.Second

// @title Teacher Administration API
// @version 1.0.0
// @description Teacher-student rosters, suspensions and notification recipients
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if err := run(cfg, logr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func run(cfg *config.Config, logr *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.Database, logr)
	if err != nil {
		return err
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, caching disabled", zap.Error(err))
			redisClient = nil
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cfg.Cache.Enabled && redisClient != nil)

	invalidations := jobs.NewQueue("cache-invalidation", cacheSvc.HandleInvalidation, jobs.QueueConfig{
		Workers:    cfg.Cache.InvalidationWorkers,
		MaxRetries: cfg.Cache.InvalidationRetries,
		RetryDelay: time.Second,
		Logger:     logr,
	})
	invalidations.Start(ctx)
	defer invalidations.Stop()
	cacheSvc.UseRetryQueue(invalidations)

	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	relationshipRepo := repository.NewRelationshipRepository(db)

	teacherSvc := service.NewTeacherService(teacherRepo, cacheSvc, validator.New(), logr)
	rosterSvc := service.NewRosterService(db, studentRepo, relationshipRepo, cacheSvc, metricsSvc, logr, service.RosterServiceConfig{
		CommonStudentsActiveOnly: cfg.Roster.CommonStudentsActiveOnly,
	})
	notificationSvc := service.NewNotificationService(teacherSvc, relationshipRepo, studentRepo, metricsSvc, logr)
	exportSvc := service.NewRosterExportService(teacherSvc, relationshipRepo, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc, "/metrics", "/health", "/ready"))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Teachers: handler.NewTeacherHandler(teacherSvc, exportSvc),
		Students: handler.NewStudentHandler(teacherSvc, rosterSvc, notificationSvc),
		Metrics:  handler.NewMetricsHandler(metricsSvc, db),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "api_prefix", cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logr.Info("server stopped")
	return nil
}
