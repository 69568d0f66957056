package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/edusched/timetable-api/api/swagger"
	"github.com/edusched/timetable-api/internal/handler"
	"github.com/edusched/timetable-api/internal/middleware"
	"github.com/edusched/timetable-api/internal/repository"
	"github.com/edusched/timetable-api/internal/service"
	"github.com/edusched/timetable-api/pkg/cache"
	"github.com/edusched/timetable-api/pkg/config"
	"github.com/edusched/timetable-api/pkg/database"
	"github.com/edusched/timetable-api/pkg/logger"
	corsmiddleware "github.com/edusched/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edusched/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 0.1.0
// @description Weekly school timetable generation and versioned persistence
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var redisClient *redis.Client
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, proposals will not survive restarts", zap.Error(err))
	} else {
		redisClient = client
	}

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.JWT.Secret, cfg.JWT.Expiration, logr)

	timetableRepo := repository.NewTimetableRepository(db)
	lessonRepo := repository.NewTimetableLessonRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	timetableSvc := service.NewTimetableService(
		timetableRepo,
		lessonRepo,
		cacheRepo,
		db,
		metricsSvc,
		cfg.Scheduler,
		logr,
	)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if cfg.Scheduler.Enabled {
		api := r.Group(cfg.APIPrefix)
		api.GET("/timetables", timetableHandler.List)
		api.GET("/timetables/:id/lessons", timetableHandler.Lessons)
		api.GET("/timetables/:id/export", timetableHandler.Export)

		guarded := api.Group("", middleware.JWT(authSvc))
		guarded.POST("/timetables/generate", timetableHandler.Generate)
		guarded.POST("/timetables/save", timetableHandler.Save)
		guarded.DELETE("/timetables/:id", timetableHandler.Delete)
	} else {
		logr.Warn("scheduler disabled, timetable endpoints not mounted")
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
