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

	_ "github.com/noah-isme/exam-planner-api/api/swagger"
	"github.com/noah-isme/exam-planner-api/internal/handler"
	internalmiddleware "github.com/noah-isme/exam-planner-api/internal/middleware"
	"github.com/noah-isme/exam-planner-api/internal/repository"
	"github.com/noah-isme/exam-planner-api/internal/service"
	"github.com/noah-isme/exam-planner-api/pkg/cache"
	"github.com/noah-isme/exam-planner-api/pkg/config"
	"github.com/noah-isme/exam-planner-api/pkg/database"
	"github.com/noah-isme/exam-planner-api/pkg/events"
	"github.com/noah-isme/exam-planner-api/pkg/jobs"
	"github.com/noah-isme/exam-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/exam-planner-api/pkg/middleware/requestid"
)

// @title Exam Planner API
// @version 1.0.0
// @description Exam timetabling for departments: slot scheduling, conflict audits, room assignment and seat plans.
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

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database unavailable", "error", err)
	}
	defer db.Close()

	metrics := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{"postgres": db.PingContext}

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.AuditCache.Enabled
	if cacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, audit cache disabled", "error", err)
			cacheEnabled = false
		} else {
			repo := repository.NewCacheRepository(client, logr)
			defer repo.Close() //nolint:errcheck
			cacheRepo = repo
			checks["redis"] = repo.Ping
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.AuditCache.TTL, logr, cacheEnabled)

	publisher := newPublisher(cfg.Events, logr)
	defer publisher.Close() //nolint:errcheck
	eventQueue := jobs.NewQueue("exam-plan-events", service.EventPublishHandler(publisher), jobs.QueueConfig{
		Workers:    cfg.Events.Workers,
		MaxRetries: cfg.Events.MaxRetries,
		Logger:     logr,
	})
	eventQueue.Start(ctx)
	defer eventQueue.Stop()
	eventSvc := service.NewEventService(eventQueue, logr)

	departmentRepo := repository.NewDepartmentRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	classroomRepo := repository.NewClassroomRepository(db)
	examRepo := repository.NewExamRepository(db)

	validate := validator.New()
	scheduleSvc := service.NewExamScheduleService(
		departmentRepo,
		courseRepo,
		enrollmentRepo,
		classroomRepo,
		examRepo,
		db,
		cacheSvc,
		eventSvc,
		metrics,
		service.SchedulerDefaults{
			CooldownMinutes:   cfg.Scheduler.CooldownMinutes,
			SingleExamAtATime: cfg.Scheduler.SingleExamAtATime,
			ExamType:          cfg.Scheduler.ExamType,
			DurationMinutes:   cfg.Scheduler.DefaultDuration,
			WindowDays:        cfg.Scheduler.DefaultWindowDays,
		},
		validate,
		logr,
	)
	auditSvc := service.NewConflictAuditService(departmentRepo, examRepo, enrollmentRepo, studentRepo, cacheSvc, cfg.AuditCache.TTL, logr)
	roomSvc := service.NewRoomAssignmentService(departmentRepo, classroomRepo, examRepo, db, cacheSvc, eventSvc, metrics, logr)
	seatingSvc := service.NewSeatingService(examRepo, classroomRepo, studentRepo, logr)

	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics, "/metrics"))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.RegisterRoutes(
		r.Group(cfg.APIPrefix),
		handler.NewExamPlanHandler(scheduleSvc, auditSvc, roomSvc),
		handler.NewExamHandler(scheduleSvc, seatingSvc),
		metricsHandler,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "audit_cache", cacheEnabled, "events", cfg.Events.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}

func newPublisher(cfg config.EventsConfig, logr *zap.Logger) events.Publisher {
	if !cfg.Enabled {
		return events.LogPublisher{Logger: logr}
	}
	return events.NewAMQPPublisher(cfg.AMQPURL, cfg.Queue, logr)
}
