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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/opencampus/ccrm-api/api/swagger"
	"github.com/opencampus/ccrm-api/internal/handler"
	"github.com/opencampus/ccrm-api/internal/middleware"
	"github.com/opencampus/ccrm-api/internal/repository"
	"github.com/opencampus/ccrm-api/internal/service"
	"github.com/opencampus/ccrm-api/pkg/cache"
	"github.com/opencampus/ccrm-api/pkg/config"
	"github.com/opencampus/ccrm-api/pkg/jobs"
	"github.com/opencampus/ccrm-api/pkg/logger"
	corsmiddleware "github.com/opencampus/ccrm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/opencampus/ccrm-api/pkg/middleware/requestid"
	"github.com/opencampus/ccrm-api/pkg/storage"
)

// @title Campus Course & Records API
// @version 1.0.0
// @description Student, course and enrollment management with GPA and transcript reporting
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validate := validator.New()

	studentRepo := repository.NewStudentRepository()
	courseRepo := repository.NewCourseRepository()
	enrollmentRepo := repository.NewEnrollmentRepository()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	enrollmentSvc := service.NewEnrollmentService(enrollmentRepo, studentRepo, courseRepo, nil, validate, logr).
		WithMetrics(metricsSvc).
		WithCache(cacheSvc)
	datafileSvc := service.NewDatafileService(studentRepo, courseRepo, enrollmentRepo, cfg.Data.Dir, cfg.Data.BackupDir, logr)

	exportStorage, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportSvc := service.NewReportService(enrollmentSvc, studentRepo, courseRepo, exportStorage, signer, service.ReportServiceConfig{
		APIPrefix:       cfg.APIPrefix,
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	}, validate, logr)

	reportQueue := jobs.NewQueue("reports", reportSvc.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	reportQueue.Start(ctx)
	defer reportQueue.Stop()
	reportSvc.WithQueue(reportQueue)
	reportSvc.StartCleanup(ctx)

	if cfg.Data.SeedOnBoot {
		if err := datafileSvc.SeedSamples(); err != nil {
			logr.Sugar().Warnw("sample datafiles not seeded", "error", err)
		}
		if summaries, err := datafileSvc.ImportAll(ctx); err != nil {
			logr.Sugar().Warnw("datafile import skipped", "error", err)
		} else {
			for _, summary := range summaries {
				logr.Sugar().Infow("datafile imported", "file", summary.File, "imported", summary.Imported, "skipped", summary.Skipped)
			}
		}
	}

	studentHandler := handler.NewStudentHandler(studentSvc, enrollmentSvc)
	courseHandler := handler.NewCourseHandler(courseSvc, enrollmentSvc)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentSvc)
	datafileHandler := handler.NewDatafileHandler(datafileSvc)
	reportHandler := handler.NewReportHandler(reportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/students", studentHandler.List)
		api.POST("/students", studentHandler.Create)
		api.GET("/students/:id", studentHandler.Get)
		api.PUT("/students/:id/max-credits", studentHandler.SetMaxCredits)
		api.GET("/students/:id/enrollments", studentHandler.Enrollments)
		api.GET("/students/:id/gpa", studentHandler.GPA)
		api.GET("/students/:id/transcript", studentHandler.Transcript)

		api.GET("/courses", courseHandler.List)
		api.POST("/courses", courseHandler.Create)
		api.GET("/courses/:code", courseHandler.Get)
		api.PUT("/courses/:code/instructor", courseHandler.AssignInstructor)
		api.GET("/courses/:code/enrollments", courseHandler.Roster)
		api.DELETE("/courses/:code", courseHandler.Deactivate)

		api.GET("/enrollments", enrollmentHandler.List)
		api.POST("/enrollments", enrollmentHandler.Create)
		api.GET("/enrollments/:id", enrollmentHandler.Get)
		api.PUT("/enrollments/:id/grade", enrollmentHandler.RecordGrade)
		api.DELETE("/enrollments/:id", enrollmentHandler.Withdraw)

		api.POST("/datafiles/import", datafileHandler.Import)
		api.POST("/datafiles/export", datafileHandler.Export)
		api.POST("/datafiles/backup", datafileHandler.Backup)
		api.GET("/datafiles/backup/size", datafileHandler.BackupSize)

		api.POST("/reports", reportHandler.Create)
		api.GET("/reports/:id", reportHandler.Status)
		api.GET("/reports/download/:token", reportHandler.Download)

		api.GET("/metrics/summary", metricsHandler.Summary)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
