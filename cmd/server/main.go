// Package main runs the pulse survey engine HTTP server with the
// in-process scheduler and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-pulse/backend/config"
	"github.com/aura-pulse/backend/internal/analytics"
	"github.com/aura-pulse/backend/internal/auth"
	"github.com/aura-pulse/backend/internal/cohorts"
	"github.com/aura-pulse/backend/internal/directory"
	"github.com/aura-pulse/backend/internal/invites"
	"github.com/aura-pulse/backend/internal/middleware"
	"github.com/aura-pulse/backend/internal/notify"
	"github.com/aura-pulse/backend/internal/questions"
	"github.com/aura-pulse/backend/internal/responses"
	"github.com/aura-pulse/backend/internal/scheduler"
	"github.com/aura-pulse/backend/internal/schedules"
	"github.com/aura-pulse/backend/pkg/database"
	"github.com/aura-pulse/backend/pkg/queue"
	"github.com/aura-pulse/backend/pkg/redis"
	"github.com/aura-pulse/backend/pkg/response"
	"github.com/aura-pulse/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var s3Client *storage.S3
	if cfg.AWS.Region != "" && cfg.AWS.ExportsBucket != "" {
		s3Cfg := storage.S3Config{
			Region:               cfg.AWS.Region,
			AccessKeyID:          cfg.AWS.AccessKeyID,
			SecretAccessKey:      cfg.AWS.SecretAccessKey,
			ExportsBucket:        cfg.AWS.ExportsBucket,
			PresignExpireMinutes: cfg.AWS.PresignExpireMinutes,
		}
		s3Client, err = storage.NewS3(ctx, s3Cfg, logger)
		if err != nil {
			logger.Warn("s3 exports disabled", zap.Error(err))
		}
	}

	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpireHours)
	jobQueue := queue.NewQueue(rdb.Client, logger)

	// Directory (read-only tenant/user views)
	dirRepo := directory.NewRepository(pool, cfg.Pulse.DefaultThreshold)

	// Questions
	questionRepo := questions.NewRepository(pool)
	questionHandler := questions.NewHandler(questionRepo)

	// Cohorts
	cohortRepo := cohorts.NewRepository(pool)

	// Schedules
	scheduleRepo := schedules.NewRepository(pool)
	scheduleHandler := schedules.NewHandler(scheduleRepo, logger)

	cohortHandler := cohorts.NewHandler(cohortRepo, dirRepo, scheduleRepo, cfg.Pulse.DefaultCohortCount, logger)

	// Invites
	inviteRepo := invites.NewRepository(pool)
	notifier := notify.NewQueueNotifier(jobQueue, logger)
	issuer := invites.NewIssuer(inviteRepo, notifier,
		time.Duration(cfg.Pulse.InviteTTLDays)*24*time.Hour,
		cfg.Server.PublicBaseURL, logger)
	inviteHandler := invites.NewHandler(inviteRepo)

	// Responses
	responseRepo := responses.NewRepository(pool)
	ledger := responses.NewLedger(responseRepo, logger)
	responseHandler := responses.NewHandler(ledger)

	// Analytics
	analyticsRepo := analytics.NewRepository(pool)
	analyticsSvc := analytics.NewService(analyticsRepo, logger)
	var exporter *analytics.Exporter
	if s3Client != nil {
		exporter = analytics.NewExporter(s3Client, logger)
	}
	analyticsHandler := analytics.NewHandler(analyticsSvc, dirRepo, exporter)

	// Scheduler (in-process driver + dispatch history)
	dispatchRepo := scheduler.NewRepository(pool)
	dispatchHandler := scheduler.NewHandler(dispatchRepo, logger)
	driver := scheduler.NewDriver(scheduleRepo, dirRepo, cohortRepo, questionRepo, issuer, dispatchRepo, scheduler.Options{
		Tick:           time.Duration(cfg.Pulse.TickSeconds) * time.Second,
		Workers:        cfg.Pulse.DispatchWorkers,
		DefaultCohorts: cfg.Pulse.DefaultCohortCount,
		Guard:          scheduler.NewRedisGuard(rdb.Client),
		Logger:         logger,
	})

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	// Health
	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	// Public: one-tap and form responses authenticate by invite token,
	// never by session. Recipients must be able to answer from an email
	// link without logging in.
	router.GET("/pulse/respond", responseHandler.SubmitOneTap)
	router.POST("/pulse/respond", responseHandler.Submit)

	// Protected API (JWT required)
	api := router.Group("")
	api.Use(middleware.JWT(jwtService))
	{
		// Member surface
		api.GET("/pulse/invites/pending", inviteHandler.ListPending)

		// Admin surface
		admin := api.Group("", middleware.RequireRole("admin"))
		{
			admin.POST("/pulse/questions", questionHandler.Create)
			admin.GET("/pulse/questions", questionHandler.List)
			admin.PATCH("/pulse/questions/:id/activate", questionHandler.Activate)
			admin.PATCH("/pulse/questions/:id/deactivate", questionHandler.Deactivate)

			admin.GET("/pulse/schedule", scheduleHandler.Get)
			admin.PUT("/pulse/schedule", scheduleHandler.Upsert)

			admin.POST("/pulse/cohorts/seed", cohortHandler.Seed)
			admin.GET("/pulse/dispatches", dispatchHandler.ListDispatches)

			admin.GET("/pulse/summary", analyticsHandler.GetSummary)
			admin.POST("/pulse/summary/export", analyticsHandler.ExportSummary)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	driverCtx, driverCancel := context.WithCancel(context.Background())
	defer driverCancel()
	go driver.Run(driverCtx)

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	driverCancel()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
