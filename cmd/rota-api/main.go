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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/shiftwise/rota-api/api/swagger"
	"github.com/shiftwise/rota-api/internal/handler"
	"github.com/shiftwise/rota-api/internal/middleware"
	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/repository"
	"github.com/shiftwise/rota-api/internal/service"
	"github.com/shiftwise/rota-api/pkg/cache"
	"github.com/shiftwise/rota-api/pkg/config"
	"github.com/shiftwise/rota-api/pkg/database"
	"github.com/shiftwise/rota-api/pkg/logger"
	corsmiddleware "github.com/shiftwise/rota-api/pkg/middleware/cors"
	reqidmiddleware "github.com/shiftwise/rota-api/pkg/middleware/requestid"
	"github.com/shiftwise/rota-api/pkg/storage"
)

// @title ShiftWise Rota API
// @version 1.0.0
// @description Constraint-based employee rota generation and management
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, continuing without cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}

	fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	userRepo := repository.NewUserRepository(db)
	employeeRepo := repository.NewEmployeeRepository(db)
	requestRepo := repository.NewScheduleRequestRepository(db)
	rosterRepo := repository.NewRosterRepository(db)

	authSvc := service.NewAuthService(userRepo, nil, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	userSvc := service.NewUserService(userRepo, nil, logr)
	employeeSvc := service.NewEmployeeService(employeeRepo, requestRepo, nil, logr)
	requestSvc := service.NewScheduleRequestService(requestRepo, employeeRepo, nil, logr)

	var rosterCache service.RosterCache
	if cacheSvc != nil {
		rosterCache = cacheSvc
	}
	rosterSvc := service.NewRosterService(employeeRepo, requestRepo, rosterRepo, rosterCache, metricsSvc, nil, logr, service.RosterConfig{
		TimeLimit:   cfg.Solver.TimeLimit,
		ProposalTTL: cfg.Solver.ProposalTTL,
	})
	exportSvc := service.NewExportService(rosterSvc, fileStore, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.SignedURLTTL,
	}, logr, nil, nil)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	employeeHandler := handler.NewEmployeeHandler(employeeSvc)
	requestHandler := handler.NewScheduleRequestHandler(requestSvc)
	rosterHandler := handler.NewRosterHandler(rosterSvc, exportSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.WithResponseMeta())
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/change-password", middleware.JWT(authSvc), authHandler.ChangePassword)
	auth.GET("/me", middleware.JWT(authSvc), authHandler.Me)

	// Signed token downloads carry their own authorization.
	api.GET("/export/:token", exportHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(authSvc))

	users := secured.Group("/users")
	users.Use(middleware.RequireRoles(models.RoleAdmin))
	users.GET("", userHandler.List)
	users.POST("", userHandler.Create)
	users.GET("/:id", userHandler.Get)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	planners := middleware.RequireRoles(models.RoleAdmin, models.RolePlanner)

	employees := secured.Group("/employees")
	employees.GET("", employeeHandler.List)
	employees.GET("/:id", employeeHandler.Get)
	employees.POST("", planners, employeeHandler.Create)
	employees.PUT("/:id", planners, employeeHandler.Update)
	employees.DELETE("/:id", planners, employeeHandler.Delete)

	requests := secured.Group("/requests")
	requests.GET("", requestHandler.List)
	requests.POST("", planners, requestHandler.Create)
	requests.DELETE("/:id", planners, requestHandler.Delete)

	rosters := secured.Group("/rosters")
	rosters.GET("", rosterHandler.List)
	rosters.GET("/:id", rosterHandler.Get)
	rosters.POST("/generate", planners, rosterHandler.Generate)
	rosters.POST("", planners, rosterHandler.Save)
	rosters.DELETE("/:id", planners, rosterHandler.Delete)
	rosters.POST("/:id/export", rosterHandler.Export)

	secured.GET("/metrics/summary", middleware.RequireRoles(models.RoleAdmin), metricsHandler.Snapshot)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cfg.Exports.CleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				removed, err := exportSvc.Cleanup(0)
				if err != nil {
					logr.Warn("export cleanup failed", zap.Error(err))
				} else if len(removed) > 0 {
					logr.Info("export cleanup removed files", zap.Int("count", len(removed)))
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
