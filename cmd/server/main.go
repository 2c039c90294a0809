package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"investorwatch/internal/config"
	cronrunner "investorwatch/internal/cron"
	"investorwatch/internal/db"
	"investorwatch/internal/handler"
	"investorwatch/internal/logger"
	gormrepository "investorwatch/internal/repository/gorm"
	"investorwatch/internal/service"
	"investorwatch/internal/source"
)

func main() {
	_ = godotenv.Load()

	cfgPath := os.Getenv("IW_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("IW_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	fetcher := &source.HTTPFetcher{
		Client:    &http.Client{Timeout: cfg.Fetch.Timeout},
		UserAgent: cfg.Fetch.UserAgent,
	}

	reconcileService := &service.ReconcileService{Store: store, Logger: logger}
	ingestService, err := service.NewIngestService(cfg.Ingest, cfg.Investors, fetcher, reconcileService, store, logger)
	if err != nil {
		logger.Fatal("source configuration failed", zap.Error(err))
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	scheduleService := &service.ScheduleService{
		Store:   store,
		Trigger: cronRunner,
		Logger:  logger,
		Job: func(ctx context.Context) {
			result, err := ingestService.Run(ctx)
			if err != nil {
				if errors.Is(err, service.ErrRunInProgress) {
					logger.Warn("scheduled ingest skipped, run already in progress")
					return
				}
				logger.Error("scheduled ingest failed", zap.Error(err))
				return
			}
			logger.Info("scheduled ingest ok",
				zap.Int("holdings_upserted", result.Holdings.Upserted),
				zap.Int("holdings_deleted", result.Holdings.Deleted),
				zap.Int("bulk_deals_upserted", result.BulkDeals.Upserted),
				zap.Int("block_deals_upserted", result.BlockDeals.Upserted),
				zap.Strings("failed_investors", result.FailedInvestors),
			)
		},
	}

	schedule, err := scheduleService.GetOrCreate(ctx)
	if err != nil {
		logger.Fatal("schedule init failed", zap.Error(err))
	}
	if err := scheduleService.Configure(schedule); err != nil {
		logger.Fatal("schedule trigger failed", zap.Error(err))
	}
	cronRunner.Start()
	defer cronRunner.Stop()

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	portfolioHandler := &handler.PortfolioHandler{Repo: store, Logger: logger}
	portfolioHandler.Register(engine)
	ingestHandler := &handler.IngestHandler{Service: ingestService, Repo: store, Logger: logger}
	ingestHandler.Register(engine)
	scheduleHandler := &handler.ScheduleHandler{Service: scheduleService, Logger: logger}
	scheduleHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
